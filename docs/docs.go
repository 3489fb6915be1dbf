// Package docs registers the Swagger document served under /swagger.
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
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Console login",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful"},
                    "400": {"description": "Invalid request body"},
                    "401": {"description": "Invalid credentials"},
                    "500": {"description": "Upstream error"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Console logout",
                "responses": {
                    "200": {"description": "Logout successful"}
                }
            }
        },
        "/auth/user": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current operator",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CurrentUserResponse"}},
                    "401": {"description": "Authentication required"}
                }
            }
        },
        "/auth/client": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Media client authentication",
                "parameters": [
                    {"description": "Client credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ClientAuthRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Missing credentials"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Inactive user or no channel access"},
                    "404": {"description": "User profile not found"},
                    "500": {"description": "Internal server error"}
                }
            }
        },
        "/channels": {
            "get": {"produces": ["application/json"], "tags": ["channels"], "summary": "List channels", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["channels"], "summary": "Create channel", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid request"}}}
        },
        "/channels/{id}": {
            "get": {"produces": ["application/json"], "tags": ["channels"], "summary": "Get channel by ID", "parameters": [{"type": "string", "description": "Channel ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Channel not found"}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["channels"], "summary": "Update channel", "parameters": [{"type": "string", "description": "Channel ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Channel not found"}}},
            "patch": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["channels"], "summary": "Update channel", "parameters": [{"type": "string", "description": "Channel ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Channel not found"}}},
            "delete": {"tags": ["channels"], "summary": "Delete channel", "parameters": [{"type": "string", "description": "Channel ID", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "Channel deleted"}, "404": {"description": "Channel not found"}}}
        },
        "/users": {
            "get": {"produces": ["application/json"], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Create user", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid data, duplicate username or user limit reached"}}}
        },
        "/users/{id}": {
            "get": {"produces": ["application/json"], "tags": ["users"], "summary": "Get user by ID", "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Update user", "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "patch": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Update user", "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "delete": {"tags": ["users"], "summary": "Delete user", "parameters": [{"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "User deleted"}, "404": {"description": "User not found"}}}
        },
        "/super-admins": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["super-admins"], "summary": "Create super admin", "responses": {"201": {"description": "Created"}, "400": {"description": "Incomplete data or duplicate username"}, "403": {"description": "Insufficient permissions"}}}
        },
        "/internal/reconcile": {
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["internal"], "summary": "Schedule relation reconciliation", "responses": {"202": {"description": "Task enqueued"}, "401": {"description": "Invalid or missing API key"}}}
        }
    },
    "definitions": {
        "models.LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.ClientAuthRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "server_url": {"type": "string"}}
        },
        "models.CurrentUserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "is_authenticated": {"type": "boolean"},
                "user_limit": {"type": "integer"},
                "user_count": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Plus Console API",
	Description:      "Administration API for users, channels and media room tokens",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
