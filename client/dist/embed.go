package clientdist

import _ "embed"

// FiltersJS is the thin client bundle.
//
// It is served by the host at "/_filters/client.js".
//
//go:embed filters.js
var FiltersJS []byte
