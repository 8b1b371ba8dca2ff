// Package docs holds the OpenAPI description of the API. It follows the
// layout swag produces and is kept in step with the handler annotations by
// hand; running swag init over cmd/serve.go replaces it.
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
        "/expenses/{expense-id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Get an expense",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Expense ID", "name": "expense-id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Expense"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Delete an expense",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Expense ID", "name": "expense-id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/groups": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the token owner's groups with the number and total of their expenses.",
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List groups",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GroupsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a group owned by the token owner.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create a group",
                "parameters": [
                    {"description": "Group", "name": "group", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Group"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/groups/{group-id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete one of the token owner's groups together with its expenses.",
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Delete a group",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Group ID", "name": "group-id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/groups/{group-id}/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List the expenses of a group",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Group ID", "name": "group-id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ExpensesResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Add an expense to one of the token owner's groups. The amount may be a number or a numeric string.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Add an expense",
                "parameters": [
                    {"type": "integer", "example": 1, "description": "Group ID", "name": "group-id", "in": "path", "required": true},
                    {"description": "Expense", "name": "expense", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CreateExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Expense"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.CreateExpenseRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "number", "example": 89.0},
                "description": {"type": "string", "maxLength": 255}
            }
        },
        "models.CreateGroupRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string", "maxLength": 1000},
                "name": {"type": "string", "maxLength": 255}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "models.Expense": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "description": {"type": "string"},
                "group_id": {"type": "integer"},
                "id": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "models.ExpensesResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "expenses": {"type": "array", "items": {"$ref": "#/definitions/models.Expense"}},
                "group_id": {"type": "integer"},
                "total_amount": {"type": "number"}
            }
        },
        "models.Group": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.GroupSummary": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "created_by": {"type": "string"},
                "description": {"type": "string"},
                "expense_count": {"type": "integer"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "total_amount": {"type": "number"},
                "updated_at": {"type": "string"}
            }
        },
        "models.GroupsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "groups": {"type": "array", "items": {"$ref": "#/definitions/models.GroupSummary"}}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "models.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "v1",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Splitbook Services API",
	Description:      "Expense sharing API: groups and their expenses, owned by the authenticated user.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
