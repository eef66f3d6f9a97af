package artifacts

import _ "embed"

// Default settings written to a fresh config directory.
//
//go:embed global/settings.yaml
var GlobalSettings []byte
