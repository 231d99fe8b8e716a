// Package spec embeds the OpenAPI specification for the HaulTrackr API.
// The HTTP server serves it at /openapi.yaml and renders it with
// Swagger UI at /docs.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
