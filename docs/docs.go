// Package docs embeds the OpenAPI document served at /swagger and used for
// request validation.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed openapi.json
var OpenAPI []byte

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Title:            "InvoiceHub API",
	Description:      "Invoices, PDF rendering and client notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  string(OpenAPI),
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
