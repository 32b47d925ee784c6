package notionpub

import _ "embed"

// defaultStylesheet is written to style.css in the output dir. A style.css
// in the public dir replaces it.
//
//go:embed embedded/style.css
var defaultStylesheet []byte
