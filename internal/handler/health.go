package handler

import (
	"net/http"

	"github.com/tonghaoch/transaction-service-go/internal/api"
)

// HealthResponse is the fixed body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

var healthOK = HealthResponse{Status: "ok", Service: api.ServiceName}

// Health returns the fixed service status descriptor.
func Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, healthOK)
}

// Welcome handles GET /.
func Welcome(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"message": api.WelcomeMessage})
}
