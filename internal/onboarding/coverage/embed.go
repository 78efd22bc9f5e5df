package coverage

import _ "embed"

//go:embed manifest.yml
var defaultManifest []byte
