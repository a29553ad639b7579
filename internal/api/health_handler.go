package api

import (
	"net/http"

	"github.com/usersync/users-service/internal/api/shared"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "users-service"

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}
