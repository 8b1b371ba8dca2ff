package handlers

import (
	"errors"
	"net/http"

	services "github.com/splitbook/splitbook-services/api/services"
	"github.com/splitbook/splitbook-services/models"
)

const (
	ServiceName = "splitbook-services"
	Version     = "1.0.0"
)

// Index lists the API endpoints. It needs no token.
func Index(basePath string) http.HandlerFunc {
	endpoints := map[string]string{
		"health":         "GET /health",
		"groups":         "GET|POST " + basePath + "/groups",
		"group":          "DELETE " + basePath + "/groups/{id}",
		"group_expenses": "GET|POST " + basePath + "/groups/{id}/expenses",
		"expense":        "GET|DELETE " + basePath + "/expenses/{id}",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		services.WriteResponse(w, http.StatusOK, models.IndexResponse{
			Message:   "Splitbook expense sharing API",
			Version:   Version,
			Endpoints: endpoints,
		})
	}
}

// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.WriteResponse(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: ServiceName})
	}
}

// NotFound answers unmatched routes with a JSON error.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.HandleErrResponse(w, http.StatusNotFound, errors.New("not found"))
	}
}

// MethodNotAllowed answers matched paths with an unsupported method.
func MethodNotAllowed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.HandleErrResponse(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	}
}
