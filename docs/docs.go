// Package docs holds the OpenAPI document served under /swagger/ when the
// server is built with -tags=swagger. Regenerate with `swag init -g cmd/cropd/docs.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "croprec maintainers"},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}}
            }
        },
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Feature sets with their features and trained model keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/types.FeatureSet"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/features": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Feature descriptions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/registry.FeatureInfo"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/crops": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Crop classes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models-names": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Display names of model keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/datasets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Dataset names",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DatasetsResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/predict/{modelName}": {
            "post": {
                "description": "Body is form-encoded, multipart or a JSON object mapping every feature of the model's feature set to a number.",
                "consumes": ["application/x-www-form-urlencoded", "multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["predict"],
                "summary": "Predict the crop for one instance",
                "parameters": [
                    {"type": "string", "description": "Model name, e.g. s1_RF", "name": "modelName", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.PredictionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Catalog and bundle cache status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        }
    },
    "definitions": {
        "registry.FeatureInfo": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "int"},
                "min": {"type": "number", "example": 0},
                "max": {"type": "number", "example": 140},
                "full_name": {"type": "string", "example": "Nitrogen"},
                "help": {"type": "string"},
                "unit": {"type": "string", "example": "kg/ha"}
            }
        },
        "types.DatasetsResponse": {
            "type": "object",
            "properties": {"datasets": {"type": "array", "items": {"type": "string"}, "example": ["AtharvaIngle_CR", "RaulSingh_CR"]}}
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 400},
                "error": {"type": "string", "example": "bad_model_features"}
            }
        },
        "types.FeatureSet": {
            "type": "object",
            "properties": {
                "features": {"type": "array", "items": {"type": "string"}},
                "models": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        },
        "types.LoadedModel": {
            "type": "object",
            "properties": {
                "created_unix": {"type": "integer"},
                "id": {"type": "string"},
                "kind": {"type": "string", "example": "random_forest"},
                "last_used_unix": {"type": "integer"},
                "name": {"type": "string", "example": "s1_RF"}
            }
        },
        "types.PredictionResponse": {
            "type": "object",
            "properties": {"prediction": {"type": "string", "example": "rice"}}
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "evictions_total": {"type": "integer"},
                "loaded": {"type": "array", "items": {"$ref": "#/definitions/types.LoadedModel"}},
                "loads_total": {"type": "integer"},
                "max_loaded": {"type": "integer"},
                "models": {"type": "array", "items": {"type": "string"}},
                "models_dir": {"type": "string"},
                "reloaded_unix": {"type": "integer"},
                "server_time_unix": {"type": "integer"},
                "state": {"type": "string", "example": "ready"},
                "uptime_seconds": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "croprec API",
	Description:      "Crop recommendation predictions over pre-trained models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
