// Package docs registers the OpenAPI description served under /swagger.
// Keep it in step with the @-annotations on the handlers.
package docs

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
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/update": {
            "post": {
                "description": "temp, humi and lumi must all be present; values that are not numbers are stored as 0.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Ingest a sensor reading",
                "parameters": [
                    {
                        "description": "Reading payload",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.UpdateResponse"}},
                    "400": {"description": "error, received", "schema": {"type": "object"}},
                    "500": {"description": "error, details", "schema": {"type": "object"}}
                }
            }
        },
        "/data": {
            "get": {
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Current reading",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Reading"}}}
            }
        },
        "/historique": {
            "get": {
                "description": "Newest first. limit keeps the first N entries; absent, zero, negative or unreadable means all.",
                "produces": ["application/json"],
                "tags": ["readings"],
                "summary": "Reading history",
                "parameters": [
                    {"type": "integer", "example": 3, "description": "Maximum number of entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.HistoryEntry"}}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Process status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Status"}}}
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to WebSocket and pushes {\"type\":\"reading\",\"data\":Reading} on connect and every interval.",
                "tags": ["readings"],
                "summary": "Live reading feed",
                "parameters": [
                    {"type": "string", "example": "2s", "description": "Go duration, at most 60s", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Milliseconds, at most 60000", "name": "interval_ms", "in": "query"}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.UpdateRequest": {
            "type": "object",
            "properties": {
                "temp": {"example": "22.5"},
                "humi": {"example": "60"},
                "lumi": {"example": "500"}
            }
        },
        "handlers.UpdateResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "reading stored"},
                "data": {"$ref": "#/definitions/models.Reading"}
            }
        },
        "models.Reading": {
            "type": "object",
            "properties": {
                "temperature": {"type": "number"},
                "humidity": {"type": "number"},
                "light": {"type": "integer"},
                "capturedAt": {"type": "string"}
            }
        },
        "models.HistoryEntry": {
            "type": "object",
            "properties": {
                "temperature": {"type": "number"},
                "humidity": {"type": "number"},
                "light": {"type": "integer"},
                "capturedAt": {"type": "string"},
                "timestamp": {"type": "integer"}
            }
        },
        "models.Status": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "number"},
                "lastReading": {"$ref": "#/definitions/models.Reading"},
                "readingCount": {"type": "integer"},
                "memoryUsed": {"type": "string"}
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
	Title:            "Aeroponic tower hub API",
	Description:      "Sensor readings ingestion and query for an aeroponic growing tower.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
