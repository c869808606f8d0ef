package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/decode": {
            "post": {"tags": ["codec"], "summary": "Decode a movie",
                "consumes": ["application/octet-stream"], "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "string", "format": "binary"}},
                    {"name": "header", "in": "query", "type": "boolean"},
                    {"name": "inputs", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "413": {"description": "Payload Too Large"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.DecodeErrorDetail"}}
                }}
        },
        "/movies": {
            "get": {"tags": ["movies"], "summary": "List movies", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["movies"], "summary": "Add a movie",
                "consumes": ["application/octet-stream"], "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "string", "format": "binary"}},
                    {"name": "name", "in": "query", "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.DecodeErrorDetail"}}
                }}
        },
        "/movies/{id}": {
            "get": {"tags": ["movies"], "summary": "Get a movie", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["movies"], "summary": "Delete a movie", "produces": ["application/json"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/movies/{id}/raw": {
            "get": {"tags": ["movies"], "summary": "Export a movie", "produces": ["application/octet-stream"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}, "404": {"description": "Not Found"}}}
        },
        "/movies/{id}/inputs": {
            "get": {"tags": ["movies"], "summary": "Get input samples", "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "offset", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        }
    },
    "definitions": {
        "api.DecodeErrorDetail": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "field": {"type": "string"},
                "offset": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "summary": {"type": "object"},
                "header": {"type": "object"},
                "inputs": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8064",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "m64kit REST API",
	Description:      "Decode, validate and catalog Mupen64 .m64 movie files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
