package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"twharvest/pkg/auth"
	"twharvest/pkg/config"
	"twharvest/pkg/ui"
)

var (
	importAppend bool
	clearYes     bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials",
	Long: `Manage the credential pool.

Credentials are read from one source, chosen by twitter.credentials.source:
  - file       a CSV table (--credentials path.csv)
  - keyring    the system keychain, under a profile name
  - encrypted  an AES-GCM file unlocked with a passphrase
  - env        a single credential from TWHARVEST_* variables

import, add and clear write to the keyring or encrypted store.
Never share your credential files!`,
}

var authGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain API credentials",
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowCredentialGuide(os.Stdout)
	},
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the credentials in the configured source",
	Long:  `List the credential pool with every key masked.`,
	RunE:  runAuthList,
}

var authImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Copy a credential CSV into the keyring or encrypted store",
	Example: `  twharvest auth import keys.csv --source keyring --profile research
  twharvest auth import more.csv --source encrypted --append`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthImport,
}

var authAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one credential interactively",
	Long: `Prompt for a consumer key and secret and an access token and secret, then
append them to the keyring or encrypted store. Secrets are read without echo.`,
	RunE: runAuthAdd,
}

var authExportCmd = &cobra.Command{
	Use:   "export <file.csv>",
	Short: "Write the configured credentials to a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthExport,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every credential from the keyring or encrypted store",
	RunE:  runAuthClear,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authGuideCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authImportCmd)
	authCmd.AddCommand(authAddCmd)
	authCmd.AddCommand(authExportCmd)
	authCmd.AddCommand(authClearCmd)

	authImportCmd.Flags().BoolVar(&importAppend, "append", false, "append to the stored table instead of replacing it")
	authClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "do not ask for confirmation")
}

// credentialsConfig loads configuration for the auth commands.
func credentialsConfig() (config.CredentialsConfig, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return config.CredentialsConfig{}, err
	}
	return cfg.Twitter.Credentials, nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	cc, err := credentialsConfig()
	if err != nil {
		return err
	}
	src, err := auth.OpenSource(cc, promptPassphrase)
	if err != nil {
		return err
	}
	pool, err := auth.LoadPool(src)
	if err != nil {
		return err
	}

	ui.PrintInfo("Source", src.Name())
	for i := 0; i < pool.Len(); i++ {
		c := pool.At(i).Masked()
		mode := "app only"
		if pool.At(i).HasUserContext() {
			mode = "user"
		}
		ui.Printf("  %s  %s  %s  %s\n", ui.Dim(fmt.Sprintf("[%d]", i)), ui.Yellow(c.ConsumerKey), c.AccessToken, ui.Dim(mode))
	}
	return nil
}

func runAuthImport(cmd *cobra.Command, args []string) error {
	cc, err := credentialsConfig()
	if err != nil {
		return err
	}

	creds, err := auth.FileSource{Path: args[0]}.Load()
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		return fmt.Errorf("%s holds no credentials", args[0])
	}

	store, err := auth.OpenStore(cc, promptPassphrase)
	if err != nil {
		return err
	}
	if importAppend {
		existing, err := loadExisting(store)
		if err != nil {
			return err
		}
		creds = append(existing, creds...)
	}
	if err := store.Save(creds); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Stored %d credentials in %s", len(creds), store.Name()))
	return nil
}

func runAuthAdd(cmd *cobra.Command, args []string) error {
	cc, err := credentialsConfig()
	if err != nil {
		return err
	}
	store, err := auth.OpenStore(cc, promptPassphrase)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Consumer key: ")
	key, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read consumer key: %w", err)
	}

	var c auth.Credential
	c.ConsumerKey = strings.TrimSpace(key)
	if c.ConsumerSecret, err = readSecret("Consumer secret: "); err != nil {
		return err
	}
	if c.AccessToken, err = readSecret("Access token (Enter for app-only): "); err != nil {
		return err
	}
	if c.AccessToken != "" {
		if c.AccessSecret, err = readSecret("Access secret: "); err != nil {
			return err
		}
	}
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return errors.New("consumer key and secret are required")
	}

	creds, err := loadExisting(store)
	if err != nil {
		return err
	}
	for _, e := range creds {
		if e.ID() == c.ID() {
			return errors.New("credential already stored")
		}
	}
	creds = append(creds, c)
	if err := store.Save(creds); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Credential %s stored (%d in pool)", auth.Mask(c.ConsumerKey), len(creds)))
	return nil
}

func runAuthExport(cmd *cobra.Command, args []string) error {
	cc, err := credentialsConfig()
	if err != nil {
		return err
	}
	src, err := auth.OpenSource(cc, promptPassphrase)
	if err != nil {
		return err
	}
	creds, err := src.Load()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if err := auth.WriteCSV(f, creds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %d credentials to %s", len(creds), args[0]))
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	cc, err := credentialsConfig()
	if err != nil {
		return err
	}
	store, err := auth.OpenStore(cc, promptPassphrase)
	if err != nil {
		return err
	}

	if !clearYes {
		fmt.Printf("Delete every credential in %s? (y/N): ", store.Name())
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := store.Delete(); err != nil {
		return err
	}
	ui.PrintSuccess("Credentials removed")
	return nil
}

// loadExisting reads store, treating a missing table as empty.
func loadExisting(store auth.Store) ([]auth.Credential, error) {
	creds, err := store.Load()
	if errors.Is(err, auth.ErrCredentialsNotFound) {
		return nil, nil
	}
	return creds, err
}

// promptPassphrase asks for the encrypted store passphrase.
func promptPassphrase() (string, error) {
	return readSecret("Passphrase: ")
}

// readSecret prompts for a value without echo when stdin is a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
