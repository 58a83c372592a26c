// Package userlist persists the screen names that timeline and friends
// harvests use when none are given on the command line.
//
// The list lives in a platform-specific data directory:
//   - Linux: $XDG_DATA_HOME/twharvest/users.json or ~/.local/share/twharvest/
//   - macOS: ~/Library/Application Support/twharvest/
//   - Windows: %APPDATA%/twharvest/
//
// Writes go through a temporary file and rename.
package userlist
