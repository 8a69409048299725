package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TutorBook API",
        "description": "Tutor catalog, lesson requests and slot bookings",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Goals and tutor profiles"},
        {"name": "Records", "description": "Bookings and lesson requests"},
        {"name": "Observability", "description": "Runtime counters"}
    ],
    "paths": {
        "/goals": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List goals",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List tutors",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "goal", "in": "query", "type": "string", "description": "Only tutors for this goal, best rated first"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["random", "rating", "price_asc", "price_desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown goal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Tutor profile with free times per day",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown tutor", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "get": {
                "tags": ["Records"],
                "summary": "List bookings in submission order",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Records"],
                "summary": "Book a tutor slot",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Slot not free", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown tutor or slot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/export": {
            "get": {
                "tags": ["Records"],
                "summary": "Download the booking ledger",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "get": {
                "tags": ["Records"],
                "summary": "Get one booking",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/requests": {
            "get": {
                "tags": ["Records"],
                "summary": "List lesson requests in submission order",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Records"],
                "summary": "Submit a lesson request",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LessonRequestForm"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/snapshot": {
            "get": {
                "tags": ["Observability"],
                "summary": "Request, cache and booking counters",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Goal": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "Teacher": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "about": {"type": "string"},
                "rating": {"type": "number"},
                "picture": {"type": "string"},
                "price": {"type": "integer"},
                "goals": {"type": "array", "items": {"type": "string"}},
                "free": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "object",
                        "additionalProperties": {"type": "boolean"}
                    }
                }
            }
        },
        "Booking": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "teacher_id": {"type": "integer"},
                "day": {"type": "string"},
                "start_time": {"type": "string"},
                "client_name": {"type": "string"},
                "client_phone": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "LessonRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "goal": {"type": "string"},
                "time": {"type": "string"},
                "client_name": {"type": "string"},
                "client_phone": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "required": ["teacher_id", "weekday", "time", "client_name", "client_phone"],
            "properties": {
                "teacher_id": {"type": "integer", "example": 3},
                "weekday": {"type": "string", "example": "wed"},
                "time": {"type": "string", "example": "14:00"},
                "client_name": {"type": "string", "maxLength": 100},
                "client_phone": {"type": "string", "example": "+7-916-1234567"}
            }
        },
        "LessonRequestForm": {
            "type": "object",
            "required": ["goal", "time", "client_name", "client_phone"],
            "properties": {
                "goal": {"type": "string", "example": "travel"},
                "time": {"type": "string", "enum": ["1-2", "3-5", "5-7", "7-10"]},
                "client_name": {"type": "string", "maxLength": 100},
                "client_phone": {"type": "string", "example": "+7-916-1234567"}
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
