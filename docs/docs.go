// Package docs registers the OpenAPI description served at /swagger.
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
        "/api/v1/logs": {
            "get": {
                "description": "Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' covers the whole day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List audit events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range; date-only treated as end of day", "name": "to", "in": "query"},
                    {
                        "enum": ["PUMP_ON", "PUMP_OFF", "CONFIG_CHANGE", "NIGHT_LOCKOUT", "AUTO_CUTOFF", "CRITICAL_LEVEL", "SIM_START", "SIM_STOP"],
                        "type": "string",
                        "description": "Event type",
                        "name": "type",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/simulation/start": {
            "post": {
                "produces": ["application/json"],
                "tags": ["simulation"],
                "summary": "Start simulation",
                "responses": {
                    "200": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/simulation/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["simulation"],
                "summary": "Simulation status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.SimulationStatus"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/simulation/stop": {
            "post": {
                "description": "Stopping a stopped simulation succeeds.",
                "produces": ["application/json"],
                "tags": ["simulation"],
                "summary": "Stop simulation",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/tank/config": {
            "put": {
                "description": "threshold must be within [5,40]; the update is all-or-nothing.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tank"],
                "summary": "Update safety configuration",
                "parameters": [
                    {"description": "Config payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/tank/pump": {
            "post": {
                "description": "Accepted at any time; night lockout and auto cut-off apply on the next tick.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tank"],
                "summary": "Switch pump",
                "parameters": [
                    {"description": "Pump payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PumpRequest"}}
                ],
                "responses": {
                    "200": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/tank/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tank"],
                "summary": "Get tank state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TankReading"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Websocket. Sends the current state, then one state envelope per tick. ?interval=2s or ?interval_ms=2000 coalesces to at most one envelope per interval.",
                "tags": ["stream"],
                "summary": "Live state stream",
                "parameters": [
                    {"type": "string", "description": "Coalescing interval, e.g. 500ms", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Coalescing interval in milliseconds", "name": "interval_ms", "in": "query"}
                ],
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.ConfigRequest": {
            "type": "object",
            "properties": {
                "auto_cutoff": {"type": "boolean", "example": true},
                "night_limit": {"type": "boolean", "example": true},
                "threshold": {"type": "number", "example": 20}
            }
        },
        "handlers.PumpRequest": {
            "type": "object",
            "properties": {
                "on": {"description": "Desired pump state", "type": "boolean", "example": true}
            }
        },
        "models.TankReading": {
            "type": "object",
            "properties": {
                "auto_cutoff_enabled": {"type": "boolean"},
                "critical_threshold": {"type": "number"},
                "hour": {"type": "integer"},
                "level": {"type": "number"},
                "liters": {"type": "number"},
                "night_limit_enabled": {"type": "boolean"},
                "pump_on": {"type": "boolean"},
                "seq": {"type": "integer"},
                "status": {"type": "string", "enum": ["NORMAL", "LOW", "CRITICAL"]},
                "updated_at": {"type": "string"}
            }
        },
        "service.SimulationStatus": {
            "type": "object",
            "properties": {
                "last_tick_at": {"type": "string"},
                "period_ms": {"type": "integer"},
                "running": {"type": "boolean"},
                "seq": {"type": "integer"},
                "started_at": {"type": "string"},
                "uptime": {"type": "string"}
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
	Title:            "Water Tank Interlock API",
	Description:      "Tank level simulation with night lockout and auto cut-off interlocks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
