package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "E-Learning API",
        "description": "CRUD backend for users, books and courses with JWT auth",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login and registration"},
        {"name": "Books", "description": "Book catalog"},
        {"name": "Courses", "description": "Course catalog"},
        {"name": "Users", "description": "Account management"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or duplicate email"}
                }
            }
        },
        "/books": {
            "get": {
                "tags": ["Books"],
                "summary": "List books",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range"}
                }
            },
            "post": {
                "tags": ["Books"],
                "summary": "Create book (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation or duplicate ISBN"}
                }
            }
        },
        "/books/search": {
            "get": {
                "tags": ["Books"],
                "summary": "Search books",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "author", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "isbn", "in": "query", "type": "string"},
                    {"name": "minPrice", "in": "query", "type": "number"},
                    {"name": "maxPrice", "in": "query", "type": "number"},
                    {"name": "isActive", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/books/categories": {
            "get": {
                "tags": ["Books"],
                "summary": "List distinct categories",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/books/stats": {
            "get": {
                "tags": ["Books"],
                "summary": "Catalog statistics (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/books/export": {
            "get": {
                "tags": ["Books"],
                "summary": "Export the catalog as CSV or PDF (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/books/{id}": {
            "get": {
                "tags": ["Books"],
                "summary": "Get one book",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Books"],
                "summary": "Update book (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBookRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Books"],
                "summary": "Deactivate book (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deactivated"}}
            }
        },
        "/books/{id}/stock": {
            "patch": {
                "tags": ["Books"],
                "summary": "Set stock (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStockRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation or capacity exceeded"}
                }
            }
        },
        "/courses/search": {
            "get": {
                "tags": ["Courses"],
                "summary": "Search courses",
                "parameters": [
                    {"name": "title", "in": "query", "type": "string"},
                    {"name": "instructor", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "string", "enum": ["Beginner", "Intermediate", "Advanced"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/categories": {
            "get": {
                "tags": ["Courses"],
                "summary": "List distinct categories",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get one course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCourseRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course permanently (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deleted"}}
            }
        },
        "/courses/{id}/participants": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Set the enrollment counter (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateParticipantsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Capacity exceeded"}
                }
            }
        },
        "/courses/{id}/status": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Toggle activation (admin/teacher)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "name", "in": "query", "type": "string"},
                    {"name": "email", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "graduated", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Get own profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update own profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/me/picture": {
            "post": {
                "tags": ["Users"],
                "summary": "Upload own profile picture",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "picture", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get one user (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Delete user permanently (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "Deleted"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "teacher", "student"]},
                "birth_date": {"type": "string"}
            }
        },
        "CreateBookRequest": {
            "type": "object",
            "required": ["title", "author", "isbn"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "image": {"type": "string"},
                "stock": {"type": "integer", "minimum": 0}
            }
        },
        "UpdateBookRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "author": {"type": "string"},
                "isbn": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "image": {"type": "string"},
                "stock": {"type": "integer", "minimum": 0},
                "is_active": {"type": "boolean"}
            }
        },
        "UpdateStockRequest": {
            "type": "object",
            "required": ["stock"],
            "properties": {
                "stock": {"type": "integer", "minimum": 0}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["title", "instructor", "level"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "instructor": {"type": "string"},
                "duration": {"type": "string"},
                "level": {"type": "string", "enum": ["Beginner", "Intermediate", "Advanced"]},
                "category": {"type": "string"},
                "price": {"type": "number", "minimum": 0},
                "max_participants": {"type": "integer", "minimum": 1},
                "current_participants": {"type": "integer", "minimum": 0}
            }
        },
        "UpdateCourseRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "level": {"type": "string", "enum": ["Beginner", "Intermediate", "Advanced"]},
                "price": {"type": "number", "minimum": 0},
                "max_participants": {"type": "integer", "minimum": 1},
                "current_participants": {"type": "integer", "minimum": 0},
                "is_active": {"type": "boolean"}
            }
        },
        "UpdateParticipantsRequest": {
            "type": "object",
            "required": ["current_participants"],
            "properties": {
                "current_participants": {"type": "integer", "minimum": 0}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "currentPage": {"type": "integer"},
                "totalPages": {"type": "integer"},
                "total": {"type": "integer"},
                "limit": {"type": "integer"}
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "error": {"$ref": "#/definitions/APIError"}
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
