package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the dashboard service
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Weather Dashboard API",
			"description": "Regional weather dashboard with live sensor ingestion, PostgreSQL storage, and batch processing",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Weather Dashboard Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:3000", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Weather dashboard",
					"description": "Render the latest weather per province grouped by region, plus the five most recent sensor readings",
					"parameters": []map[string]interface{}{
						{
							"name":        "q",
							"in":          "query",
							"description": "Case-insensitive substring filter on province name",
							"required":    false,
							"schema":      map[string]string{"type": "string"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Rendered dashboard page",
							"content": map[string]interface{}{
								"text/html": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
						"500": map[string]interface{}{
							"description": "Localized error page",
							"content": map[string]interface{}{
								"text/html": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
			"/api/sensor": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Store a sensor reading",
					"description": "Accept a temperature and humidity sample; the server assigns the timestamp",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{
									"type":     "object",
									"required": []string{"temperature", "humidity"},
									"properties": map[string]interface{}{
										"temperature": map[string]interface{}{
											"oneOf": []map[string]string{
												{"type": "number"},
												{"type": "string", "description": "Numeric string such as \"25.5\""},
											},
										},
										"humidity": map[string]interface{}{
											"oneOf": []map[string]string{
												{"type": "number"},
												{"type": "string", "description": "Numeric string such as \"60\""},
											},
										},
									},
								},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Reading stored",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"message": map[string]string{"type": "string"},
										},
									},
								},
							},
						},
						"400": map[string]interface{}{
							"description": "Missing or non-numeric field",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"error":   map[string]string{"type": "string"},
											"message": map[string]string{"type": "string"},
											"code":    map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
						"500": map[string]interface{}{
							"description": "Storage failure",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"error":   map[string]string{"type": "string"},
											"message": map[string]string{"type": "string"},
											"code":    map[string]string{"type": "integer"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the service and its database are reachable",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Service is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status":    map[string]string{"type": "string"},
											"timestamp": map[string]string{"type": "string", "format": "date-time"},
										},
									},
								},
							},
						},
						"503": map[string]interface{}{
							"description": "Database unreachable",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status":    map[string]string{"type": "string"},
											"timestamp": map[string]string{"type": "string", "format": "date-time"},
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
