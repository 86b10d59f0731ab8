// Package docs holds the OpenAPI document served by the Swagger UI.
// Regenerate swagger.tmpl.json with `swag init -g cmd/api/main.go` after
// changing handler annotations.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.tmpl.json
var docTemplate string

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Dispatch API",
	Description:      "Role-based news desk: journalists write, editors approve, readers subscribe.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
