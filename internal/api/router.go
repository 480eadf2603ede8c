package api

import (
	"net/http"

	"vendor-match-service/internal/api/handlers"
	"vendor-match-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.RequestService) http.Handler {
	mux := http.NewServeMux()

	requestHandler := &handlers.RequestHandler{Service: svc}
	offerHandler := &handlers.OfferHandler{Service: svc}
	orderHandler := &handlers.OrderHandler{Service: svc}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /requests", requestHandler.Create)
	mux.HandleFunc("GET /requests/{id}", requestHandler.Get)
	mux.HandleFunc("DELETE /requests/{id}", requestHandler.Cancel)
	mux.HandleFunc("GET /requests/{id}/offers", offerHandler.List)
	mux.HandleFunc("POST /requests/{id}/responses", offerHandler.SubmitResponse)
	mux.HandleFunc("POST /orders", orderHandler.Create)

	return loggingMiddleware(mux)
}
