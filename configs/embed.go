// Package configs embeds the default configuration shipped with the
// binary.
package configs

import _ "embed"

//go:embed default.toml
var defaultTOML []byte

// DefaultTOML returns the default memodex.toml contents.
func DefaultTOML() []byte {
	out := make([]byte, len(defaultTOML))
	copy(out, defaultTOML)
	return out
}
