package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AnonSafety API",
        "description": "Anonymous incident reporting with a realtime community feed",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Reports", "description": "Incident report submission and feed"},
        {"name": "Authentication", "description": "Optional accounts for named reporting"},
        {"name": "Coordinators", "description": "Regional coordinator directory"}
    ],
    "paths": {
        "/reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List recent reports",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reports"],
                "summary": "Submit an incident report",
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "description", "in": "formData", "required": true, "type": "string"},
                    {"name": "region", "in": "formData", "required": true, "type": "string"},
                    {"name": "author_label", "in": "formData", "type": "string"},
                    {"name": "evidence", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Created report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"},
                    "503": {"description": "Store unavailable"}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get one report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports/{id}/like": {
            "put": {
                "tags": ["Reports"],
                "summary": "Like a report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports/{id}/comment": {
            "put": {
                "tags": ["Reports"],
                "summary": "Comment on a report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CommentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reports/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the feed as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "403": {"description": "Officials only"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email or username taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/coordinators": {
            "get": {
                "tags": ["Coordinators"],
                "summary": "List regional coordinators",
                "parameters": [
                    {"name": "region", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Report": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "author_label": {"type": "string"},
                "description": {"type": "string"},
                "region": {"type": "string"},
                "status": {"type": "string", "enum": ["Pending", "Investigating", "Resolved"]},
                "evidence_ref": {"type": "string"},
                "like_count": {"type": "integer"},
                "comments": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Comment"}
                },
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Comment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "report_id": {"type": "string"},
                "author_label": {"type": "string"},
                "text": {"type": "string"},
                "is_official": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "CommentRequest": {
            "type": "object",
            "properties": {
                "author_label": {"type": "string"},
                "text": {"type": "string"},
                "is_official": {"type": "boolean"}
            },
            "required": ["text"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "region": {"type": "string"},
                "email_notifications": {"type": "boolean"}
            },
            "required": ["username", "email", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "Coordinator": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "region": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
