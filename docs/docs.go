// Package docs holds the OpenAPI document served under /swagger. It is
// maintained by hand alongside the handler annotations.
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
        "/api/analyze-job-link": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Job posting analysis",
                "parameters": [
                    {"description": "Job posting URL", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.JobLinkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.JobLinkReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Revoke the current token",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Exchange the current token for a fresh one",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/chat/history/{sessionId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Session history",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HistoryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["opportunities"],
                "summary": "Event listings",
                "parameters": [
                    {"type": "string", "description": "Comma separated skills", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ListingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/feedback": {
            "post": {
                "description": "Records a 1 to 5 rating, with an optional comment, in the session history.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Rate a reply",
                "parameters": [
                    {"description": "Rating", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.FeedbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/gemini": {
            "post": {
                "description": "Answers through the language model. Skills found in the message are remembered and matching jobs appended; job portal links are analysed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Assistant chat",
                "parameters": [
                    {"description": "Message", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ChatReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["opportunities"],
                "summary": "Job listings",
                "parameters": [
                    {"type": "string", "description": "Comma separated skills", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ListingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/mentorship": {
            "get": {
                "produces": ["application/json"],
                "tags": ["opportunities"],
                "summary": "Mentoring program listings",
                "parameters": [
                    {"type": "string", "description": "Comma separated skills", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ListingResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/resume-upload": {
            "post": {
                "description": "Extracts text and skills from a PDF resume and returns feedback plus matching opportunities.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Resume analysis",
                "parameters": [
                    {"type": "file", "description": "PDF resume, at most 10MB", "name": "resume", "in": "formData", "required": true},
                    {"type": "string", "description": "Session ID", "name": "sessionId", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ResumeReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/search-opportunities": {
            "post": {
                "description": "Searches jobs, events and mentoring programs for the given skills. searchType is all (default), jobs, events or mentoring.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["opportunities"],
                "summary": "Opportunity search",
                "parameters": [
                    {"description": "Skills and search type", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SearchReply"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/chat": {
            "post": {
                "description": "Answers with canned career tips chosen by keyword.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Keyword chat",
                "parameters": [
                    {"description": "Message", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.PlainChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PlainChatResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "userId": {"type": "string"}
            }
        },
        "handler.ChatRequest": {
            "type": "object",
            "properties": {
                "context": {"$ref": "#/definitions/service.ChatContext"},
                "message": {"type": "string"},
                "sessionId": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "handler.FeedbackRequest": {
            "type": "object",
            "required": ["sessionId", "rating"],
            "properties": {
                "comment": {"type": "string", "maxLength": 2000},
                "messageId": {"type": "string"},
                "rating": {"type": "integer", "minimum": 1, "maximum": 5},
                "sessionId": {"type": "string"}
            }
        },
        "handler.HistoryResponse": {
            "type": "object",
            "properties": {
                "history": {"type": "array", "items": {"$ref": "#/definitions/model.Message"}},
                "userInfo": {"$ref": "#/definitions/model.UserInfo"}
            }
        },
        "handler.JobLinkRequest": {
            "type": "object",
            "required": ["url"],
            "properties": {
                "sessionId": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handler.ListingResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/model.Opportunity"}}
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.MeResponse": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "expiresAt": {"type": "integer"},
                "userId": {"type": "string"}
            }
        },
        "handler.PlainChatRequest": {
            "type": "object",
            "properties": {
                "context": {"$ref": "#/definitions/service.ChatContext"},
                "sessionId": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "handler.PlainChatResponse": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "handler.SearchRequest": {
            "type": "object",
            "properties": {
                "searchType": {"type": "string"},
                "sessionId": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        },
        "handler.SignupRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.JobDetails": {
            "type": "object",
            "properties": {
                "company": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "source": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "model.Message": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "role": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "model.Opportunity": {
            "type": "object",
            "properties": {
                "company": {"type": "string"},
                "description": {"type": "string"},
                "link": {"type": "string"},
                "location": {"type": "string"},
                "source": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "model.UserInfo": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}}
            }
        },
        "service.ChatContext": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "service.ChatReply": {
            "type": "object",
            "properties": {
                "biasDetected": {"type": "boolean"},
                "biasType": {"type": "string"},
                "response": {"type": "string"},
                "sessionId": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "suggestion": {"type": "string"}
            }
        },
        "service.JobLinkReply": {
            "type": "object",
            "properties": {
                "jobDetails": {"$ref": "#/definitions/model.JobDetails"},
                "response": {"type": "string"},
                "sessionId": {"type": "string"}
            }
        },
        "service.ResumeReply": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "response": {"type": "string"},
                "sessionId": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}}
            }
        },
        "service.SearchReply": {
            "type": "object",
            "properties": {
                "response": {"type": "string"},
                "results": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/model.Opportunity"}}},
                "sessionId": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:9002",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Asha Career Assistant API",
	Description:      "Career assistant API with chat, resume analysis, opportunity search and JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
