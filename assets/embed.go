// Package assets embeds the starter question pack, so a fresh install
// has something to serve before real content is uploaded.
package assets

import _ "embed"

//go:embed questions.json
var Questions []byte
