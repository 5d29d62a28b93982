package content

import (
	_ "embed"
)

// DesignationCatalogue holds the raw bytes of designations.yaml, baked into the
// binary so band tables and recommendation text travel with the executable.
//
//go:embed designations.yaml
var DesignationCatalogue []byte
