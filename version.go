package mathview

import _ "embed"

// Version is the mathview release, read from the VERSION file.
//
//go:embed VERSION
var Version string
