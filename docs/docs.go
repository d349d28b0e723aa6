// Package docs holds the OpenAPI document served at /swagger. It mirrors the
// swag annotations on the handlers; regenerate with `swag init` after
// changing them.
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
        "/ping": {
            "get": {
                "description": "Service liveness with per-model availability",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HealthResponse"}}
                }
            }
        },
        "/api/v1/models": {
            "get": {
                "description": "Models in display order with their availability",
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ModelStatus"}}}
                }
            }
        },
        "/api/v1/predict": {
            "post": {
                "description": "Run one model on the eleven clinical values. Class 1 means heart disease.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Predict heart disease",
                "parameters": [
                    {"description": "Model name and clinical input", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PredictRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.PredictResponse"}},
                    "400": {"description": "Invalid request or input out of range", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "404": {"description": "Unknown model", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Model not available", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/auth/request": {
            "post": {
                "description": "Request a JWT token for admin access. Token is sent via email and is valid for 24 hours. Rate limited to 1 request per 24 hours.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin-auth"],
                "summary": "Request admin authentication token",
                "parameters": [
                    {"description": "Email address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token request successful, email sent", "schema": {"$ref": "#/definitions/services.TokenResponse"}},
                    "400": {"description": "Invalid request format", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized email", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/predictions": {
            "get": {
                "security": [{"AdminAuth": []}],
                "description": "Newest first, with clinical inputs decrypted",
                "produces": ["application/json"],
                "tags": ["admin-history"],
                "summary": "List prediction history",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Page size (1-500)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Records to skip", "name": "offset", "in": "query"},
                    {"type": "string", "description": "UTC timestamp, e.g. 2025-11-13T12:00:00Z", "name": "since", "in": "query"},
                    {"type": "string", "description": "Model name", "name": "model", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.HistoryPage"}},
                    "400": {"description": "Invalid query parameter", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/predictions/stats": {
            "get": {
                "security": [{"AdminAuth": []}],
                "description": "Totals per model and outcome",
                "produces": ["application/json"],
                "tags": ["admin-history"],
                "summary": "Prediction statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.HistoryStats"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/predictions/{id}": {
            "get": {
                "security": [{"AdminAuth": []}],
                "description": "A single history record with its clinical input decrypted",
                "produces": ["application/json"],
                "tags": ["admin-history"],
                "summary": "Get one prediction",
                "parameters": [
                    {"type": "string", "description": "Record UUID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.HistoryEntry"}},
                    "400": {"description": "Invalid record ID", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/models/reload": {
            "post": {
                "security": [{"AdminAuth": []}],
                "description": "Re-read every model artifact from the model directory",
                "produces": ["application/json"],
                "tags": ["admin-maintenance"],
                "summary": "Reload models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ReloadResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/maintenance/cleanup": {
            "post": {
                "security": [{"AdminAuth": []}],
                "description": "Remove expired admin tokens and prediction history past its retention period",
                "produces": ["application/json"],
                "tags": ["admin-maintenance"],
                "summary": "Run cleanup",
                "responses": {
                    "200": {"description": "Cleanup completed successfully", "schema": {"$ref": "#/definitions/handlers.CleanupResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Model unavailable"},
                "message": {"type": "string", "example": "model is not available: SVM"}
            }
        },
        "handlers.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Validation failed"},
                "message": {"type": "string", "example": "age: must be between 1 and 100 (got: 0)"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.PredictRequest": {
            "type": "object",
            "required": ["model"],
            "properties": {
                "model": {"type": "string", "example": "Random Forest"},
                "input": {"$ref": "#/definitions/models.PatientInput"}
            }
        },
        "handlers.PredictResponse": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "Random Forest"},
                "prediction": {"type": "integer", "example": 1},
                "has_heart_disease": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Heart Disease Detected!"},
                "disclaimer": {"type": "string", "example": "Disclaimer: This app is for educational purposes only and should not be used as a substitute for professional medical advice."}
            }
        },
        "handlers.ReloadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Models reloaded"},
                "available": {"type": "integer", "example": 2},
                "models": {"type": "array", "items": {"$ref": "#/definitions/models.ModelStatus"}}
            }
        },
        "handlers.CleanupResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Cleanup completed successfully"},
                "admin_tokens_removed": {"type": "integer", "example": 2},
                "predictions_removed": {"type": "integer", "example": 10}
            }
        },
        "models.PatientInput": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 25},
                "sex": {"type": "integer", "example": 0},
                "cp": {"type": "integer", "example": 3},
                "rbp": {"type": "integer", "example": 120},
                "chol": {"type": "integer", "example": 200},
                "fbs": {"type": "boolean", "example": false},
                "restecg": {"type": "integer", "example": 1},
                "maxhr": {"type": "integer", "example": 150},
                "xang": {"type": "boolean", "example": false},
                "oldpeak": {"type": "number", "example": 1.0},
                "slope": {"type": "integer", "example": 2}
            }
        },
        "models.ModelStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Random Forest"},
                "file": {"type": "string", "example": "Random Forest.json"},
                "available": {"type": "boolean", "example": true},
                "error": {"type": "string", "example": ""}
            }
        },
        "models.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "timestamp": {"type": "string"},
                "service": {"type": "string", "example": "cardioshield-predictor"},
                "models": {"type": "object", "additionalProperties": {"type": "boolean"}},
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.DependencyStatus"}}
            }
        },
        "models.DependencyStatus": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "error": {"type": "string"}
            }
        },
        "services.TokenRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string", "example": "admin@example.com"}
            }
        },
        "services.TokenResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Admin token has been sent to your email"},
                "expires_at": {"type": "string", "example": "2025-11-13T12:00:00Z"}
            }
        },
        "services.HistoryEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "model": {"type": "string", "example": "SVM"},
                "prediction": {"type": "integer", "example": 1},
                "has_heart_disease": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Heart Disease Detected!"},
                "input": {"$ref": "#/definitions/models.PatientInput"},
                "decrypt_error": {"type": "string"},
                "created_at": {"type": "string", "example": "2025-11-13T12:00:00Z"}
            }
        },
        "services.HistoryPage": {
            "type": "object",
            "properties": {
                "total": {"type": "integer", "example": 42},
                "limit": {"type": "integer", "example": 50},
                "offset": {"type": "integer", "example": 0},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/services.HistoryEntry"}}
            }
        },
        "services.HistoryStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer", "example": 42},
                "models": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "model": {"type": "string"},
                            "total": {"type": "integer"},
                            "heart_disease": {"type": "integer"},
                            "no_heart_disease": {"type": "integer"},
                            "last_predicted_at": {"type": "string"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "AdminAuth": {
            "description": "Admin JWT obtained via POST /admin/auth/request. Format: Bearer <token>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "CardioShield Predictor API",
	Description:      "Heart disease prediction with Random Forest and SVM models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
