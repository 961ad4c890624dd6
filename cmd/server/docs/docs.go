// Package docs is generated by swag init. Regenerate with `mage swagger`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/manga/search": {"get": {"tags": ["Manga"], "summary": "Search manga", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "500": {"description": "Internal Server Error"}}}},
        "/manga/popular": {"get": {"tags": ["Manga"], "summary": "Popular manga", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/manga/{id}": {"get": {"tags": ["Manga"], "summary": "Get manga", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/manga/{id}/chapters": {"get": {"tags": ["Manga"], "summary": "List chapters", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/manga/chapter/{id}/pages": {"get": {"tags": ["Manga"], "summary": "Chapter pages", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/manga/cache/stats": {"get": {"tags": ["Manga"], "summary": "Cache statistics", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/manga/cache": {"delete": {"tags": ["Manga"], "summary": "Clear cache", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/auth/profile": {"put": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}},
        "/auth/verify-token": {"post": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Verify token", "responses": {"200": {"description": "OK"}}}},
        "/favorites": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "List favorites", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Add favorite", "responses": {"201": {"description": "Created"}}}
        },
        "/favorites/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Favorite statistics", "responses": {"200": {"description": "OK"}}}},
        "/favorites/check/{mangaId}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Check favorite", "parameters": [{"type": "string", "name": "mangaId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/favorites/{mangaId}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Update favorite", "parameters": [{"type": "string", "name": "mangaId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Remove favorite", "parameters": [{"type": "string", "name": "mangaId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/favorites/{mangaId}/read": {"post": {"security": [{"BearerAuth": []}], "tags": ["Favorites"], "summary": "Mark chapter read", "parameters": [{"type": "string", "name": "mangaId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Read-Manga API",
	Description:      "Manga catalog proxy with accounts and favorites.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
