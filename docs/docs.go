// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Cadastrar um novo usuário",
                "parameters": [
                    {"description": "registration payload", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.RegisterResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Fazer login com as suas credenciais",
                "parameters": [
                    {"description": "login payload", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.LoginResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/auth/google/login": {
            "get": {
                "tags": ["auth"],
                "summary": "Fazer login com Google",
                "responses": {
                    "302": {"description": "Found"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Listar todos os usuários (Administradores)",
                "parameters": [
                    {"enum": ["USER", "ADMIN"], "type": "string", "name": "role", "in": "query"},
                    {"enum": ["name", "email", "createdAt", "lastLoginAt"], "type": "string", "default": "createdAt", "name": "sortBy", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "default": "desc", "name": "order", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.Page"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Cadastrar um novo usuário (Administradores)",
                "parameters": [
                    {"description": "user payload", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.createUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/user.Profile"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/users/inactive": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Listar usuários com login inativos (Administradores)",
                "parameters": [
                    {"type": "integer", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.inactiveResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Obter dados do usuário atual logado",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.Profile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Obter dados de usuário por ID",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.Profile"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Atualizar dados de usuário",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "fields to change", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.updateUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/user.Profile"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Excluir usuário do sistema (Administradores)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/presenter.MessageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/presenter.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.readyResponse"}}, "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.readyResponse"}}}}
        }
    },
    "definitions": {
        "auth.LoginResult": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "user": {"$ref": "#/definitions/auth.LoginUser"}
            }
        },
        "auth.LoginUser": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN"]}
            }
        },
        "auth.RegisterResult": {
            "type": "object",
            "properties": {"userId": {"type": "string"}}
        },
        "handlers.createUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "johndoe@example.com"},
                "name": {"type": "string", "example": "John Doe"},
                "password": {"type": "string", "example": "admin123"},
                "role": {"type": "string", "enum": ["USER", "ADMIN"]}
            }
        },
        "handlers.inactiveResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/user.Profile"}}
            }
        },
        "handlers.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "johndoe@example.com"},
                "password": {"type": "string", "example": "admin123"}
            }
        },
        "handlers.registerRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "johndoe@example.com"},
                "name": {"type": "string", "example": "John Doe"},
                "password": {"type": "string", "example": "admin123"}
            }
        },
        "handlers.updateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN"]}
            }
        },
        "handlers.readyResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "array", "items": {"$ref": "#/definitions/health.Result"}},
                "status": {"type": "string"}
            }
        },
        "health.Result": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "name": {"type": "string"},
                "ok": {"type": "boolean"}
            }
        },
        "presenter.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "presenter.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "user.Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "page": {"type": "integer"},
                "pages": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "user.Page": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/user.Profile"}},
                "pagination": {"$ref": "#/definitions/user.Pagination"}
            }
        },
        "user.Profile": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "externalId": {"type": "string"},
                "id": {"type": "string"},
                "lastLoginAt": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN"]},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Token de autorização. Formatos aceitos: \"Bearer <JWT>\" ou \"<JWT>\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "accounts API",
	Description:      "Serviço de contas: cadastro, login por credenciais ou Google, e administração de usuários.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
