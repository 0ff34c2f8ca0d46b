// Package config loads the optional harness settings file.
//
// Settings are TOML. Load starts from Default, decodes the file over it,
// normalizes the values and validates the result. Command-line flags are
// applied by the caller afterwards and re-validated with Validate.
package config
