// Package handlers exposes the raffle service over a JSON HTTP API.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TheDevBianchi/rifa-camiari/config"
	"github.com/TheDevBianchi/rifa-camiari/internal/raffle"
	"github.com/TheDevBianchi/rifa-camiari/internal/token"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	svc    *raffle.Service
	tokens *token.Service
	cfg    *config.Config
}

// New creates a new handler.
func New(svc *raffle.Service, tokens *token.Service, cfg *config.Config) *Handler {
	return &Handler{
		svc:    svc,
		tokens: tokens,
		cfg:    cfg,
	}
}

// Routes returns the API route tree. Global middleware (logging,
// recovery, timeouts) is attached by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Public endpoints.
	r.Get("/api/raffles", h.ListRaffles)
	r.Get("/api/raffles/{id}", h.GetRaffle)
	r.Post("/api/raffles/{id}/purchases", h.SubmitPurchase)
	r.Get("/api/rankings", h.Rankings)

	// Admin endpoints.
	r.Post("/api/admin/token", h.ExchangeToken)
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.tokens))
		r.Use(AdminMiddleware)

		r.Post("/api/admin/raffles", h.CreateRaffle)
		r.Get("/api/admin/raffles/{id}", h.AdminGetRaffle)
		r.Post("/api/admin/raffles/{id}/finish", h.FinishRaffle)
		r.Get("/api/admin/raffles/{id}/pending", h.ListPending)
		r.Post("/api/admin/raffles/{id}/purchases/{purchaseID}/approve", h.ApprovePurchase)
		r.Post("/api/admin/raffles/{id}/purchases/{purchaseID}/reject", h.RejectPurchase)
	})

	return r
}

// --- helpers ---

func jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// jsonCreated writes a 201 response. The Content-Type header has to be
// set before WriteHeader or it is discarded.
func jsonCreated(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, raffle.ErrRaffleNotFound),
		errors.Is(err, raffle.ErrPurchaseNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, raffle.ErrInvalidRequest),
		errors.Is(err, raffle.ErrBelowMinimum):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, raffle.ErrRaffleNotActive),
		errors.Is(err, raffle.ErrTicketUnavailable),
		errors.Is(err, raffle.ErrInsufficientTickets):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("Internal error: %v", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
	}
}
