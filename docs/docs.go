// Package docs embeds the OpenAPI description served at /swagger/doc.json.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
