package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Equipment Lending API",
        "description": "Students, room access and equipment checkout/return",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student directory"},
        {"name": "Access", "description": "Room access ledger"},
        {"name": "Equipment", "description": "Equipment catalog"},
        {"name": "Lending", "description": "Checkout and return"},
        {"name": "Catalog", "description": "Reference tables"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with hasAccess",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Card already assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Student user type missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/by-card/{cardId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Find student by card",
                "parameters": [
                    {"name": "cardId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/access": {
            "post": {
                "tags": ["Access"],
                "summary": "Grant or revoke room access",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "room_id", "in": "query", "type": "integer"},
                    {"name": "grant_access", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/AccessRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Write failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/rooms": {
            "get": {
                "tags": ["Access"],
                "summary": "Rooms a student may enter",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/access/check": {
            "get": {
                "tags": ["Access"],
                "summary": "Check whether a card opens a room",
                "parameters": [
                    {"name": "card_id", "in": "query", "required": true, "type": "string"},
                    {"name": "room_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment": {
            "get": {
                "tags": ["Equipment"],
                "summary": "List equipment",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Equipment"],
                "summary": "Add equipment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateItemRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Inventory key exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/{id}": {
            "get": {
                "tags": ["Equipment"],
                "summary": "Get equipment with its current borrower",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/{id}/checkout": {
            "post": {
                "tags": ["Lending"],
                "summary": "Check equipment out to a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Item already checked out", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Status catalog incomplete", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Write failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/{id}/return": {
            "post": {
                "tags": ["Lending"],
                "summary": "Return equipment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Item not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Lending"],
                "summary": "List lending requests",
                "parameters": [
                    {"name": "item", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "integer"},
                    {"name": "open", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms": {"get": {"tags": ["Catalog"], "summary": "List rooms", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/hardware-types": {"get": {"tags": ["Catalog"], "summary": "List hardware types", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/buildings": {"get": {"tags": ["Catalog"], "summary": "List buildings", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/labs": {"get": {"tags": ["Catalog"], "summary": "List labs", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/places": {"get": {"tags": ["Catalog"], "summary": "List storage places", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/item-statuses": {"get": {"tags": ["Catalog"], "summary": "List item statuses", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}}
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "card_id": {"type": "string"}
            },
            "required": ["name", "email"]
        },
        "AccessRequest": {
            "type": "object",
            "properties": {
                "room_id": {"type": "integer"},
                "grant_access": {"type": "boolean"}
            }
        },
        "CreateItemRequest": {
            "type": "object",
            "properties": {
                "inv_key": {"type": "string"},
                "hardware_id": {"type": "integer"},
                "group_id": {"type": "integer"},
                "status_id": {"type": "integer"},
                "owner": {"type": "string"},
                "place_id": {"type": "integer"},
                "specifications": {"type": "object"}
            },
            "required": ["inv_key", "hardware_id", "owner", "place_id"]
        },
        "CheckoutRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "integer"},
                "return_date": {"type": "string", "format": "date-time"}
            },
            "required": ["student_id", "return_date"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
