package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ASCII logo for the application
const ASCIILogo = `
 _            _
| |___      _| |__   __ _ _ ____   _____  ___| |_
| __\ \ /\ / / '_ \ / _` + "`" + ` | '__\ \ / / _ \/ __| __|
| |_ \ V  V /| | | | (_| | |   \ V /  __/\__ \ |_
 \__| \_/\_/ |_| |_|\__,_|_|    \_/ \___||___/\__|
`

var (
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	yellowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	greenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	magentaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stdout
	noColor bool
	quiet   bool
)

// SetOutput redirects terminal output, mostly for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// SetColor turns styling on or off
func SetColor(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = !enabled
}

// SetQuiet suppresses everything except errors
func SetQuiet(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

func render(s lipgloss.Style) func(string) string {
	return func(text string) string {
		mu.Lock()
		plain := noColor
		mu.Unlock()
		if plain {
			return text
		}
		return s.Render(text)
	}
}

// Color functions for terminal output
var (
	Cyan    = render(cyanStyle)
	Yellow  = render(yellowStyle)
	Red     = render(redStyle)
	Green   = render(greenStyle)
	Magenta = render(magentaStyle)
	Dim     = render(dimStyle)
	Bold    = render(boldStyle)
)

func printf(important bool, format string, args ...interface{}) {
	mu.Lock()
	w, q := out, quiet
	mu.Unlock()
	if q && !important {
		return
	}
	fmt.Fprintf(w, format, args...)
}

// Printf writes to the terminal unless quiet
func Printf(format string, args ...interface{}) {
	printf(false, format, args...)
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	Printf("%s", Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		printf(true, "%s\n", Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printf(true, "%s\n", Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	Printf("%s\n", Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	Printf("%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		Printf("%s\n", Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		Printf("%s\n", Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	Printf("%s\n", Magenta(msg))
}
