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
        "/api/v1/health": {
            "get": {"tags": ["Health"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/state": {
            "get": {"tags": ["Tracking"], "summary": "Current engine snapshot", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/state/stream": {
            "get": {"tags": ["Tracking"], "summary": "Snapshot stream", "produces": ["text/event-stream"], "responses": {"200": {"description": "event stream"}}}
        },
        "/api/v1/fix": {
            "post": {
                "tags": ["Tracking"], "summary": "Push a location fix",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.FixRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/mode": {
            "post": {
                "tags": ["Tracking"], "summary": "Switch mode",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.ModeRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/recommend-mode": {
            "get": {
                "tags": ["Tracking"], "summary": "Onboarding mode suggestion", "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lon", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/permission": {
            "post": {
                "tags": ["Tracking"], "summary": "Answer a permission prompt",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.PermissionRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/permission/revoke": {
            "post": {
                "tags": ["Tracking"], "summary": "Permission revoked in system settings",
                "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/dto.RevokePermissionRequest"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/tracking/acquisition": {
            "get": {"tags": ["Tracking"], "summary": "Acquisition the device must apply", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/structures": {
            "get": {"tags": ["Structures"], "summary": "List structures", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/structures/{id}": {
            "get": {
                "tags": ["Structures"], "summary": "Get structure by id", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/structures/{id}/open": {
            "post": {
                "tags": ["Structures"], "summary": "Mark structure as opened", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/structures/{id}/like": {
            "post": {
                "tags": ["Structures"], "summary": "Toggle like", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/visits/reset": {
            "post": {"tags": ["Structures"], "summary": "Reset visits", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/likes/reset": {
            "post": {"tags": ["Structures"], "summary": "Reset likes", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/last-visited": {
            "delete": {"tags": ["Structures"], "summary": "Dismiss the last visited banner", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/stats": {
            "get": {"tags": ["Statistics"], "summary": "Get visit statistics", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "dto.FixRequest": {
            "type": "object",
            "required": ["lat", "lon"],
            "properties": {
                "lat": {"type": "number", "maximum": 90, "minimum": -90},
                "lon": {"type": "number", "maximum": 180, "minimum": -180},
                "background": {"type": "boolean"}
            }
        },
        "dto.ModeRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {"mode": {"type": "string", "enum": ["adventure", "virtual_tour"]}}
        },
        "dto.PermissionRequest": {
            "type": "object",
            "required": ["kind", "granted"],
            "properties": {
                "kind": {"type": "string", "enum": ["foreground", "background"]},
                "granted": {"type": "boolean"}
            }
        },
        "dto.RevokePermissionRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {"kind": {"type": "string", "enum": ["foreground", "background"]}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Landmark Guide API",
	Description:      "Visit tracking for landmarks inside a safe zone.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
