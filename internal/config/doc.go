// Package config handles loading and validating the droidtail TOML
// configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/droidtail/config.toml (default)
//  3. If the config file doesn't exist, fall back to built-in defaults
//  4. If the file exists but fields are missing/empty, use defaults per field
//
// # Default Values
//
//   - Config file: ~/.config/droidtail/config.toml
//   - Log format: brief
//   - Buffer: main
//   - Archive directory: ~/.local/share/droidtail/archive
//   - Rotation size: 10 MB
//   - Diagnostics log: ~/.local/state/droidtail/droidtail.log
//
// # TOML Format
//
// Example config.toml:
//
//	format = "brief"
//	buffer = "main"
//	levels = ["error", "warning", "info"]
//	tag_pattern = "^Activity.*"
//
//	[archive]
//	rotate_size_mb = 25
//	compress = true
//
//	[replay]
//	path = "~/captures/session.log"
//	follow = true
//
// Every field is optional. Tilde expansion is performed on all paths.
//
// # Validation
//
// Load rejects values outside the closed sets (unknown formats, buffers,
// or level names) so typos fail at startup rather than silently matching
// nothing. Cross-field rules, such as replay and device serial being
// mutually exclusive, live in Validate and run once the command-line
// overrides have been applied.
//
// Missing config files are NOT an error - defaults are used instead, so
// droidtail works out-of-the-box against a connected device.
//
// # Testing Considerations
//
// When testing code that uses this package:
//   - Provide explicit config paths to avoid dependency on the user's home directory
//   - Use the Config struct directly rather than Load() for unit tests
package config
