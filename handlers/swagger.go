package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the items API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>items-api - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "items-api", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Item": {
        "type": "object",
        "properties": {
          "id": { "type": "integer" },
          "name": { "type": "string" },
          "description": { "type": "string", "nullable": true },
          "created_at": { "type": "string", "format": "date-time" }
        }
      },
      "ItemInput": {
        "type": "object",
        "properties": {
          "name": { "type": "string" },
          "description": { "type": "string", "nullable": true }
        }
      },
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } }
    }
  },
  "paths": {
    "/items": {
      "get": { "summary": "List items by ascending id", "responses": { "200": { "description": "items" }, "500": { "description": "db error" } } },
      "post": {
        "summary": "Create an item",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/ItemInput" } } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "name required" }, "500": { "description": "db error" }, "503": { "description": "db busy" } }
      }
    },
    "/items/{id}": {
      "parameters": [ { "name": "id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
      "get": { "summary": "Get an item", "responses": { "200": { "description": "item" }, "404": { "description": "not found" } } },
      "put": {
        "summary": "Replace name and description",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/ItemInput" } } } },
        "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } }
      },
      "delete": { "summary": "Delete an item", "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/healthz": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "ok" } } } },
    "/readyz": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "pending or failed" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
