// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/api/v1/builder/sessions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Builder"],
                "summary": "Start a builder session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.sessionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/campaign": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Builder"],
                "summary": "Update campaign metadata",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"description": "Fields to set", "name": "campaign", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateCampaignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/builder.CampaignMetadata"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/ad-sets/{adSetID}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Builder"],
                "summary": "Update an ad set",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"type": "integer", "description": "Ad set ID", "name": "adSetID", "in": "path", "required": true},
                    {"description": "Fields to set", "name": "adSet", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.UpdateAdSetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/builder.AdSetView"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/assets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Builder"],
                "summary": "Add an asset to the pool",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"description": "Asset", "name": "asset", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.AddAssetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/builder.CreativeAsset"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/assets/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Builder"],
                "summary": "Upload creatives to the pool",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"type": "file", "description": "Creative files", "name": "files", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/templates/reload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Templates"],
                "summary": "Reload campaign templates",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.templatesResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/templates/{templateID}/select": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Templates"],
                "summary": "Apply a campaign template",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"type": "string", "description": "Template ID", "name": "templateID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/builder.CampaignMetadata"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/queue": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Queue"],
                "summary": "Open queue mode",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"type": "boolean", "description": "Regroup an open queue", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/queue.State"}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/queue/distribute": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Queue"],
                "summary": "Distribute queued assets",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/builder/sessions/{sid}/launch": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Launch"],
                "summary": "Launch the campaign",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "sid", "in": "path", "required": true},
                    {"type": "string", "description": "flattened or per_ad_set", "name": "mode", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.launchEvent"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/campaigns": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Campaigns"],
                "summary": "List launched campaigns of the caller's advertiser",
                "parameters": [
                    {"type": "string", "description": "Filter by status", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Page size (default 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Campaign"}}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "builder.CampaignMetadata": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "objective": {"type": "string"},
                "budget": {"type": "string"},
                "audience": {"type": "string"}
            }
        },
        "builder.CreativeAsset": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "preview": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "width": {"type": "integer"},
                "height": {"type": "integer"},
                "angle": {"type": "string"},
                "hook": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "builder.AdSetView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "budget": {"type": "string"},
                "audience": {"type": "string"},
                "selected_assets": {"type": "array", "items": {"$ref": "#/definitions/builder.CreativeAsset"}}
            }
        },
        "handlers.sessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tenant_id": {"type": "string"},
                "builder": {"type": "object"},
                "templates": {"type": "array", "items": {"type": "object"}},
                "selected_template": {"type": "string"},
                "launching": {"type": "boolean"}
            }
        },
        "handlers.templatesResponse": {
            "type": "object",
            "properties": {
                "templates": {"type": "array", "items": {"type": "object"}},
                "selected": {"type": "string"}
            }
        },
        "handlers.launchEvent": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "progress": {"type": "object"},
                "feedback": {"type": "object"},
                "result": {"type": "object"},
                "error": {"type": "string"},
                "error_kind": {"type": "string"}
            }
        },
        "models.UpdateCampaignRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "objective": {"type": "string"},
                "budget": {"type": "string"},
                "audience": {"type": "string"}
            }
        },
        "models.UpdateAdSetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "budget": {"type": "string"},
                "audience": {"type": "string"},
                "selected_asset_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.AddAssetRequest": {
            "type": "object",
            "required": ["id", "name", "type"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string", "enum": ["image", "video", "file"]},
                "preview": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "width": {"type": "integer"},
                "height": {"type": "integer"}
            }
        },
        "models.Campaign": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tenant_id": {"type": "string"},
                "name": {"type": "string"},
                "objective": {"type": "string"},
                "status": {"type": "string"},
                "budget": {"type": "number"},
                "audience": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "queue.State": {
            "type": "object",
            "properties": {
                "open": {"type": "boolean"},
                "buckets": {"type": "array", "items": {"type": "object"}},
                "targets": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	Title:            "Ad Builder API",
	Description:      "Compose campaigns from creative assets, ad sets and copy variants, then launch them as draft records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
