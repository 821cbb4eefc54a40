package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Schedule API",
        "description": "Class rosters, weekly schedules and enrollment conflict checks for the tutoring center",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classes", "description": "Enriched class rosters"},
        {"name": "Schedules", "description": "Weekly class schedules"},
        {"name": "Enrollments", "description": "Enrollment and conflict checks"},
        {"name": "Observability", "description": "Health checks and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unavailable"}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Service metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/enriched": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes with schedules, teachers and students",
                "parameters": [
                    {"name": "ids", "in": "query", "required": true, "type": "array", "items": {"type": "string"}, "collectionFormat": "csv"},
                    {"name": "include_teachers", "in": "query", "type": "boolean", "default": false},
                    {"name": "include_students", "in": "query", "type": "boolean", "default": false}
                ],
                "responses": {
                    "200": {"description": "OK. meta.degraded lists dimensions served empty or with unresolved profiles", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Classes could not be loaded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/schedule": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List weekly slots for a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Schedule source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/schedule/summary": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Human readable weekly schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/classes/{id}/roster/export": {
            "get": {
                "tags": ["Classes"],
                "summary": "Download a class roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Roster file. X-Roster-Degraded lists dimensions served empty"},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/teachers/{key}/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List enriched classes taught by a teacher",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string", "description": "Teacher account id or profile id"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student. Schedule conflicts are returned as a warning",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Class or student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Class inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/conflicts": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Preview schedule conflicts for an enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/enrollments/{id}/status": {
            "patch": {
                "tags": ["Enrollments"],
                "summary": "End or cancel an active enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Enrollment is not active", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/cache/profiles": {
            "delete": {
                "tags": ["Observability"],
                "summary": "Flush cached teacher and student profiles",
                "parameters": [
                    {"name": "table", "in": "query", "type": "string", "enum": ["teachers", "students"], "description": "Empty flushes both tables"}
                ],
                "responses": {
                    "204": {"description": "Flushed"},
                    "400": {"description": "VALIDATION_ERROR", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "UPSTREAM_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EnrollmentRequest": {
            "type": "object",
            "required": ["student_id", "class_id"],
            "properties": {
                "student_id": {"type": "string"},
                "class_id": {"type": "string"}
            }
        },
        "EnrollmentStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["ENDED", "CANCELLED"]}
            }
        },
        "ScheduleSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "class_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "start_time": {"type": "string", "example": "08:00"},
                "end_time": {"type": "string", "example": "09:30"},
                "location": {"type": "string"}
            }
        },
        "OverlapConflict": {
            "type": "object",
            "properties": {
                "candidate_slot": {"$ref": "#/definitions/ScheduleSlot"},
                "competing_slot": {"$ref": "#/definitions/ScheduleSlot"},
                "competing_class_id": {"type": "string"},
                "competing_class_name": {"type": "string"}
            }
        },
        "ConflictWarning": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "messages": {"type": "array", "items": {"type": "string"}},
                "remaining": {"type": "integer"},
                "summary": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
