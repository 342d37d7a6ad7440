// Package docs registers the OpenAPI document served under /swagger.
// It is maintained by hand; go generate (swag init) rebuilds it from the
// handler annotations and replaces this file.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "openapi": "3.1.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "servers": [
        {
            "url": "//{{.Host}}{{.BasePath}}"
        }
    ],
    "paths": {
        "/auth/registro": {"post": {"tags": ["auth"], "summary": "Sign up"}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in"}},
        "/auth/recuperar": {"post": {"tags": ["auth"], "summary": "Request password reset"}},
        "/auth/restablecer": {"post": {"tags": ["auth"], "summary": "Reset password"}},
        "/bancos": {"get": {"tags": ["lookups"], "summary": "List banks"}},
        "/tipos-cuenta": {"get": {"tags": ["lookups"], "summary": "List account types"}},
        "/usuarios/{id_usuario}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get profile"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update profile"}
        },
        "/cuentas": {"post": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Create account"}},
        "/cuentas/usuario/{id_usuario}": {"get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "List accounts"}},
        "/cuentas/{id_cuenta}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Get account"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Update account"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["accounts"], "summary": "Delete account"}
        },
        "/transferencia": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Create transfer"}},
        "/transferencia/pago-tercero": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Pay a third party"}},
        "/transferencia/recibir-dinero": {"post": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Receive money"}},
        "/transferencia/usuario/{id_usuario}": {"get": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Transfer history"}},
        "/transferencia/usuario/{id_usuario}/resumen": {"get": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Spending by category"}},
        "/transferencia/usuario/{id_usuario}/exportar": {"get": {"security": [{"BearerAuth": []}], "tags": ["transfers"], "summary": "Export transfer history"}},
        "/transferencia/categorias": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "List categories"},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Create category"}
        },
        "/transferencia/categorias/{id_categoria}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Update category"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Delete category"}
        }
    },
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "type": "apiKey",
                "name": "Authorization",
                "in": "header"
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CashPilot API",
	Description:      "Personal finance backend: accounts, transfers, payments, categories and spending summaries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
