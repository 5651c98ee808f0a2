// Package docs registers the OpenAPI description served under /swagger.
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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tournaments": {
            "get": {
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "string", "name": "store_id", "in": "query"},
                    {"type": "string", "name": "game", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Create a draft tournament",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Validation failed"}}
            }
        },
        "/tournaments/{tournamentID}": {
            "get": {
                "tags": ["tournaments"],
                "summary": "Tournament with its registrations",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Edit tournament fields",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Tournament is terminal"}}
            }
        },
        "/tournaments/{tournamentID}/publish": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Open registration",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/tournaments/{tournamentID}/close": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Close registration",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/tournaments/{tournamentID}/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Start the tournament",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/tournaments/{tournamentID}/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Cancel the tournament",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}
        },
        "/tournaments/{tournamentID}/complete": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Complete with the final ranking",
                "parameters": [
                    {"type": "string", "name": "tournamentID", "in": "path", "required": true},
                    {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ranking.Input"}}
                ],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}, "422": {"description": "Invalid ranking"}}}
        },
        "/tournaments/{tournamentID}/registrations": {
            "get": {"tags": ["registrations"], "summary": "Registrations in registration order",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["registrations"], "summary": "Register for a tournament",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Full, closed or already registered"}}}
        },
        "/tournaments/{tournamentID}/check-in": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["registrations"], "summary": "Mark every active registration present",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/registrations/{registrationID}/withdraw": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["registrations"], "summary": "Withdraw a registration",
                "parameters": [{"type": "string", "name": "registrationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Registration is closed"}}}
        },
        "/tournaments/{tournamentID}/messages": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["messages"], "summary": "Messages of the tournament group, oldest first",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not a reader of this tournament"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["messages"], "summary": "Post a message to the tournament group",
                "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true},
                    {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.PostMessageInput"}}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Not the operator"}, "422": {"description": "Validation failed"}}}
        },
        "/templates": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["templates"], "summary": "Templates of the caller, newest first",
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["templates"], "summary": "Save a tournament template",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateTemplateInput"}}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Validation failed"}}}
        },
        "/templates/{templateID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["templates"], "summary": "One saved template",
                "parameters": [{"type": "string", "name": "templateID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["templates"], "summary": "Delete a saved template",
                "parameters": [{"type": "string", "name": "templateID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not found"}}}
        },
        "/schedules": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["schedules"], "summary": "Create a recurring schedule",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateScheduleInput"}}],
                "responses": {"201": {"description": "Created"}}}
        },
        "/schedules/{scheduleID}/generate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["schedules"], "summary": "Create the next occurrence",
                "parameters": [{"type": "string", "name": "scheduleID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not found"}}}
        },
        "/notifications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Notifications of the caller",
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "ranking.Input": {
            "type": "object",
            "required": ["mode"],
            "properties": {
                "mode": {"type": "string", "enum": ["full_order", "podium"]},
                "order": {"type": "array", "items": {"type": "string"}},
                "podium": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.CreateTournamentInput": {
            "type": "object",
            "required": ["store_id", "name", "game", "format", "start_date"],
            "properties": {
                "store_id": {"type": "string"},
                "name": {"type": "string"},
                "game": {"type": "string", "enum": ["magic", "pokemon", "onepiece", "yugioh", "other"]},
                "format": {"type": "string", "enum": ["swiss", "single_elimination", "round_robin", "other"]},
                "start_date": {"type": "string", "example": "2024-03-01"},
                "start_time": {"type": "string", "example": "18:00"},
                "min_participants": {"type": "integer"},
                "max_participants": {"type": "integer"},
                "entry_fee_cents": {"type": "integer"},
                "registration_closes_minutes_before": {"type": "integer"},
                "template_id": {"type": "string"}
            }
        },
        "services.PostMessageInput": {
            "type": "object",
            "required": ["message"],
            "properties": {"message": {"type": "string", "maxLength": 2000}}
        },
        "services.CreateTemplateInput": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}, "template": {"type": "object"}}
        },
        "services.CreateScheduleInput": {
            "type": "object",
            "required": ["store_id", "name", "frequency"],
            "properties": {
                "store_id": {"type": "string"},
                "name": {"type": "string"},
                "frequency": {"type": "string", "enum": ["weekly", "biweekly", "monthly"]},
                "day_of_week": {"type": "integer"},
                "day_of_month": {"type": "integer"},
                "time": {"type": "string"}
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
	Title:            "TCG Tournaments API",
	Description:      "Tournament lifecycle for trading card game stores.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
