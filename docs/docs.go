// Package docs holds the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/restaurants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Search restaurants",
                "parameters": [
                    {"type": "string", "description": "Free text", "name": "q", "in": "query"},
                    {"type": "string", "description": "Cuisine or review category", "name": "category", "in": "query"},
                    {"type": "integer", "description": "Price level 1-4", "name": "price", "in": "query"},
                    {"type": "string", "description": "Canonical tag filter", "name": "tag", "in": "query"},
                    {"type": "boolean", "description": "Sort by distance", "name": "near_me", "in": "query"},
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/dishes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "Search dishes",
                "parameters": [
                    {"type": "string", "description": "Free text", "name": "q", "in": "query"},
                    {"type": "string", "description": "Dish category", "name": "category", "in": "query"},
                    {"type": "integer", "description": "Restaurant price level 1-4", "name": "price", "in": "query"},
                    {"type": "string", "description": "Canonical tag filter", "name": "tag", "in": "query"},
                    {"type": "boolean", "description": "Sort by distance", "name": "near_me", "in": "query"},
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query"},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Result"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/tags": {
            "get": {
                "produces": ["application/json"],
                "tags": ["search"],
                "summary": "List canonical tag filters",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/facet.TagFilter"}}}
                }
            }
        },
        "/places/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["places"],
                "summary": "Search the external places provider",
                "description": "Provider failures are logged and answered with an empty list.",
                "parameters": [
                    {"type": "string", "description": "Free text", "name": "q", "in": "query", "required": true},
                    {"type": "number", "description": "Latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "Longitude", "name": "lng", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Card"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/places/photo": {
            "get": {
                "produces": ["image/jpeg"],
                "tags": ["places"],
                "summary": "Proxy an external place photo",
                "parameters": [
                    {"type": "string", "description": "Photo reference from a card", "name": "ref", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws/search": {
            "get": {
                "tags": ["search"],
                "summary": "Open a live search session",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "facet.TagFilter": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "synonyms": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Coordinates": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lng": {"type": "number"}
            }
        },
        "models.Filters": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "category": {"type": "string"},
                "priceLevel": {"type": "integer"},
                "tag": {"type": "string"},
                "nearMe": {"type": "boolean"},
                "location": {"$ref": "#/definitions/models.Coordinates"},
                "mode": {"type": "string", "enum": ["restaurant", "dish"]}
            }
        },
        "models.Card": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "coverImage": {"type": "string"},
                "priceText": {"type": "string"},
                "distanceMiles": {"type": "number"},
                "distanceLabel": {"type": "string"},
                "subtitleText": {"type": "string"},
                "badgeText": {"type": "string"},
                "badgeColor": {"type": "string"},
                "tier": {"type": "string"},
                "reviewCount": {"type": "integer"},
                "qualityPercentage": {"type": "number"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "source": {"type": "string", "enum": ["local", "external"]},
                "restaurantId": {"type": "string"},
                "dishId": {"type": "string"},
                "providerId": {"type": "string"}
            }
        },
        "models.Result": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["loading", "ready", "no_match"]},
                "mode": {"type": "string", "enum": ["restaurant", "dish"]},
                "cards": {"type": "array", "items": {"$ref": "#/definitions/models.Card"}},
                "localCount": {"type": "integer"},
                "externalCount": {"type": "integer"},
                "clearFilters": {"type": "boolean"},
                "filters": {"$ref": "#/definitions/models.Filters"}
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
	Title:            "Discovery API",
	Description:      "Restaurant and dish discovery over reviews, with external place fallback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
