// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "AdminBearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/server/incoming_data": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ingress"],
                "summary": "Push data to every destination of the calling account",
                "parameters": [
                    {"type": "string", "description": "Account secret token", "name": "CL-X-TOKEN", "in": "header", "required": true},
                    {"description": "Arbitrary JSON object", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/accounts": {
            "get": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "post": {
                "security": [{"AdminBearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create an account",
                "description": "Registers a tenant and returns its generated secret token.",
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/accounts/{accountId}": {
            "get": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account",
                "parameters": [{"type": "string", "description": "Account ID", "name": "accountId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "put": {
                "security": [{"AdminBearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Update an account",
                "description": "Changes email, name or website. The secret token never changes.",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "accountId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "delete": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Delete an account",
                "description": "Removes the account and all of its destinations.",
                "parameters": [{"type": "string", "description": "Account ID", "name": "accountId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/destinations": {
            "get": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "List destinations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "post": {
                "security": [{"AdminBearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "Create a destination",
                "parameters": [
                    {"description": "Destination details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createDestinationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/destinations/account/{accountId}": {
            "get": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "List the destinations of an account",
                "parameters": [{"type": "string", "description": "Account ID", "name": "accountId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        },
        "/api/destinations/{id}": {
            "get": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "Get a destination",
                "parameters": [{"type": "string", "description": "Destination ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "put": {
                "security": [{"AdminBearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "Update a destination",
                "parameters": [
                    {"type": "string", "description": "Destination ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateDestinationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            },
            "delete": {
                "security": [{"AdminBearer": []}],
                "produces": ["application/json"],
                "tags": ["destinations"],
                "summary": "Delete a destination",
                "parameters": [{"type": "string", "description": "Destination ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Response"}}
                }
            }
        }
    },
    "definitions": {
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "handler.createAccountRequest": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "website": {"type": "string"}
            }
        },
        "handler.updateAccountRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "website": {"type": "string"}
            }
        },
        "handler.createDestinationRequest": {
            "type": "object",
            "required": ["account_id", "url", "http_method"],
            "properties": {
                "account_id": {"type": "string"},
                "url": {"type": "string"},
                "http_method": {"type": "string", "enum": ["GET", "POST", "PUT", "DELETE"]},
                "headers": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.updateDestinationRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "http_method": {"type": "string", "enum": ["GET", "POST", "PUT", "DELETE"]},
                "headers": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Webhook Relay API",
	Description:      "Multi-tenant webhook relay: accounts, destinations and payload fan-out.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
