package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, required bool, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    required,
		"schema":      schema,
	}
}

func jsonResponse(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

var (
	monthParam = queryParam("month", "Month (1-12)", true, map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 12})
	yearParam  = queryParam("year", "Year (>= 1900)", true, map[string]interface{}{"type": "integer", "minimum": 1900})
	daysParam  = queryParam("days", "Window length in days (default: 30)", false, map[string]interface{}{"type": "integer", "minimum": 1, "default": 30})
	userHeader = map[string]interface{}{
		"name":        "X-User-ID",
		"in":          "header",
		"description": "Authenticated user id set by the gateway",
		"required":    true,
		"schema":      map[string]string{"type": "integer"},
	}
	errorResponses = map[string]interface{}{
		"400": jsonResponse("Invalid input", ref("Error")),
		"401": jsonResponse("User not authenticated", ref("Error")),
		"500": jsonResponse("Internal error", ref("Error")),
	}
)

func withErrors(ok map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range errorResponses {
		out[k] = v
	}
	for k, v := range ok {
		out[k] = v
	}
	return out
}

func statsOperation(summary string, params []map[string]interface{}, schema string) map[string]interface{} {
	return map[string]interface{}{
		"get": map[string]interface{}{
			"summary":    summary,
			"tags":       []string{"stats"},
			"parameters": append([]map[string]interface{}{userHeader}, params...),
			"responses":  withErrors(map[string]interface{}{"200": jsonResponse("Successful response", ref(schema))}),
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Emotional Diary API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Emotional Diary API",
			"description": "Daily mood journal with monthly, yearly and trend reports",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/users": map[string]interface{}{
				"post": map[string]interface{}{
					"summary": "Register a user",
					"tags":    []string{"users"},
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{"schema": ref("RegisterInput")},
						},
					},
					"responses": withErrors(map[string]interface{}{
						"201": jsonResponse("User created", map[string]interface{}{
							"type":       "object",
							"properties": map[string]interface{}{"user": ref("User")},
						}),
						"409": jsonResponse("Email already registered", ref("Error")),
					}),
				},
			},
			"/api/users/me": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get the authenticated user",
					"tags":       []string{"users"},
					"parameters": []map[string]interface{}{userHeader},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Current user", map[string]interface{}{
							"type":       "object",
							"properties": map[string]interface{}{"user": ref("User")},
						}),
						"404": jsonResponse("User not found", ref("Error")),
					}),
				},
			},
			"/api/entries": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Write a diary entry",
					"tags":       []string{"entries"},
					"parameters": []map[string]interface{}{userHeader},
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{"schema": ref("CreateEntryInput")},
						},
					},
					"responses": withErrors(map[string]interface{}{
						"201": jsonResponse("Entry created", ref("CreateEntryResult")),
					}),
				},
				"get": map[string]interface{}{
					"summary":    "List a month of entries",
					"tags":       []string{"entries"},
					"parameters": []map[string]interface{}{userHeader, monthParam, yearParam},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Entries, oldest first", map[string]interface{}{
							"type":  "array",
							"items": ref("DiaryEntry"),
						}),
					}),
				},
			},
			"/api/stats/summary":      statsOperation("Monthly report", []map[string]interface{}{monthParam, yearParam}, "MonthlyStatsReport"),
			"/api/stats/yearly":       statsOperation("Yearly report", []map[string]interface{}{yearParam}, "YearlyStatsReport"),
			"/api/stats/trends":       statsOperation("Mood trends over the last days", []map[string]interface{}{daysParam}, "MoodTrendReport"),
			"/api/stats/mood":         statsOperation("Mood state over the last days", []map[string]interface{}{daysParam}, "MoodSummary"),
			"/api/stats/distribution": statsOperation("Entries per day and per score", []map[string]interface{}{daysParam}, "Distribution"),
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check that the API and its database are reachable",
					"responses": map[string]interface{}{
						"200": jsonResponse("API is healthy", ref("Health")),
						"503": jsonResponse("Database unreachable", ref("Health")),
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
		"components": map[string]interface{}{
			"schemas": schemas(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

func schemas() map[string]interface{} {
	str := map[string]string{"type": "string"}
	integer := map[string]string{"type": "integer"}
	number := map[string]string{"type": "number"}
	scoreMap := map[string]interface{}{"type": "object", "additionalProperties": integer}
	weekly := map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"week": integer, "average": str},
		},
	}

	return map[string]interface{}{
		"Error": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"error":   str,
				"message": str,
				"code":    integer,
			},
		},
		"Health": map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{"status": str, "timestamp": str},
		},
		"RegisterInput": map[string]interface{}{
			"type":       "object",
			"required":   []string{"username", "email"},
			"properties": map[string]interface{}{"username": str, "email": str},
		},
		"User": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":         integer,
				"username":   str,
				"email":      str,
				"created_at": map[string]string{"type": "string", "format": "date-time"},
				"updated_at": map[string]string{"type": "string", "format": "date-time"},
			},
		},
		"CreateEntryInput": map[string]interface{}{
			"type":     "object",
			"required": []string{"emotion_score"},
			"properties": map[string]interface{}{
				"date":          map[string]string{"type": "string", "format": "date"},
				"emotion_score": map[string]interface{}{"type": "integer", "minimum": 1, "maximum": 10},
				"description":   str,
				"activities":    map[string]interface{}{"type": "array", "items": str},
			},
		},
		"DiaryEntry": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":            integer,
				"userId":        integer,
				"date":          map[string]interface{}{"type": "string", "nullable": true},
				"emotion_score": map[string]interface{}{"type": "integer", "nullable": true},
				"description":   map[string]interface{}{"type": "string", "nullable": true},
				"activities":    map[string]interface{}{"type": "array", "items": str},
				"created_at":    map[string]string{"type": "string", "format": "date-time"},
				"updated_at":    map[string]string{"type": "string", "format": "date-time"},
			},
		},
		"MoodSummary": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"state":   map[string]interface{}{"type": "string", "enum": []string{"positive", "neutral", "negative"}},
				"average": str,
				"total":   integer,
			},
		},
		"CreateEntryResult": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"entry":       ref("DiaryEntry"),
				"moodSummary": ref("MoodSummary"),
				"reflection": map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{"analyzed": map[string]string{"type": "boolean"}, "message": str},
				},
			},
		},
		"MonthlyStatsReport": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"total_days":      integer,
				"average_emotion": str,
				"weekly_averages": weekly,
				"entries":         map[string]interface{}{"type": "array", "items": ref("DiaryEntry")},
			},
		},
		"YearlyStatsReport": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"year":         integer,
				"totalEntries": integer,
				"averageMood":  number,
				"monthlyStats": map[string]interface{}{"type": "object", "additionalProperties": ref("MonthlyStatsReport")},
			},
		},
		"MoodTrendReport": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"moodCounts":  scoreMap,
				"dailyMoods":  scoreMap,
				"totalDays":   integer,
				"averageMood": number,
			},
		},
		"Distribution": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"totalEntries":        integer,
				"entriesPerDay":       scoreMap,
				"emotionDistribution": scoreMap,
			},
		},
	}
}
