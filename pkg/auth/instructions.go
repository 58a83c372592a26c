package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCredentialGuide explains how to obtain API keys and lay out the
// credential table.
func ShowCredentialGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "API CREDENTIALS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Create an app in the developer portal for each account you control.")
	fmt.Fprintln(w, "2. From the app's \"Keys and tokens\" page copy the API key and secret,")
	fmt.Fprintln(w, "   then generate an access token and secret (read permission is enough).")
	fmt.Fprintln(w, "3. Put one app per row in a CSV file with this header:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "   %s\n", strings.Join(Fields, ","))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "4. Either point twharvest at the file (--credentials path.csv) or import")
	fmt.Fprintln(w, "   it into the keychain or encrypted store with `twharvest auth import`.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every row is a separate rate-limit budget; more rows means fewer sleeps.")
	fmt.Fprintln(w, "App-only mode (--auth-mode app) needs only the key and secret columns.")
	fmt.Fprintln(w, rule)
}
