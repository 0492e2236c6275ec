package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TheDevBianchi/rifa-camiari/internal/raffle"
	"github.com/TheDevBianchi/rifa-camiari/internal/token"
	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

// publicRaffle is the buyer-facing raffle view: pool state without the
// pending queue or confirmed buyer records.
type publicRaffle struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description,omitempty"`
	TotalTickets     int                 `json:"totalTickets"`
	Price            float64             `json:"price"`
	RandomTickets    bool                `json:"randomTickets"`
	MinTickets       int                 `json:"minTickets"`
	Status           models.RaffleStatus `json:"status"`
	SoldTickets      []ticket.Number     `json:"soldTickets"`
	ReservedTickets  []ticket.Number     `json:"reservedTickets"`
	AvailableNumbers int                 `json:"availableNumbers"`
	CreatedAt        time.Time           `json:"createdAt"`
}

func toPublicRaffle(r *models.Raffle) publicRaffle {
	sold := r.SoldTickets
	if sold == nil {
		sold = []ticket.Number{}
	}
	// Placeholder reservations from random raffles carry no number to
	// show; only identity reservations matter to buyers.
	reserved := []ticket.Number{}
	for _, n := range r.ReservedTickets {
		if n != ticket.Placeholder {
			reserved = append(reserved, n)
		}
	}
	return publicRaffle{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		TotalTickets:     r.TotalTickets,
		Price:            r.Price,
		RandomTickets:    r.RandomTickets,
		MinTickets:       r.MinTickets,
		Status:           r.Status,
		SoldTickets:      sold,
		ReservedTickets:  reserved,
		AvailableNumbers: r.AvailableNumbers,
		CreatedAt:        r.CreatedAt,
	}
}

// ListRaffles returns raffles as JSON, optionally filtered by status.
func (h *Handler) ListRaffles(w http.ResponseWriter, r *http.Request) {
	status := models.RaffleStatus(r.URL.Query().Get("status"))

	raffles, err := h.svc.ListRaffles(r.Context(), status)
	if err != nil {
		log.Printf("Error listing raffles: %v", err)
		jsonError(w, "Failed to list raffles", http.StatusInternalServerError)
		return
	}

	views := make([]publicRaffle, 0, len(raffles))
	for i := range raffles {
		views = append(views, toPublicRaffle(&raffles[i]))
	}
	jsonResponse(w, views)
}

// GetRaffle returns the public view of a single raffle.
func (h *Handler) GetRaffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rf, err := h.svc.GetRaffle(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, toPublicRaffle(rf))
}

// SubmitPurchase handles a buyer's purchase submission.
func (h *Handler) SubmitPurchase(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req raffle.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pending, err := h.svc.SubmitPurchase(r.Context(), id, req)
	if err != nil {
		serviceError(w, err)
		return
	}

	jsonCreated(w, map[string]interface{}{
		"success":  true,
		"purchase": pending,
	})
}

// Rankings returns the top buyers across all raffles.
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			jsonError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.svc.TopRankings(r.Context(), limit)
	if err != nil {
		log.Printf("Error fetching rankings: %v", err)
		jsonError(w, "Failed to fetch rankings", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.RankingEntry{}
	}
	jsonResponse(w, entries)
}

// --- admin endpoints ---

// ExchangeToken swaps a Firebase ID token for an admin API token.
// Only emails on the configured admin list are accepted.
func (h *Handler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		jsonError(w, "idToken is required", http.StatusBadRequest)
		return
	}

	fbToken, err := h.tokens.ValidateFirebaseToken(r.Context(), req.IDToken)
	if err != nil {
		log.Printf("Firebase token exchange failed: %v", err)
		jsonError(w, "Invalid Firebase token", http.StatusUnauthorized)
		return
	}

	email, _ := fbToken.Claims["email"].(string)
	if !h.cfg.Auth.IsAdminEmail(email) {
		jsonError(w, "Forbidden", http.StatusForbidden)
		return
	}

	const expiresIn = 24 * time.Hour
	signed, err := h.tokens.GenerateToken(fbToken.UID, email, []string{token.RoleAdmin}, expiresIn)
	if err != nil {
		log.Printf("Error generating admin token: %v", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"token":     signed,
		"expiresIn": int(expiresIn.Seconds()),
	})
}

// CreateRaffle handles admin raffle creation.
func (h *Handler) CreateRaffle(w http.ResponseWriter, r *http.Request) {
	var req raffle.CreateRaffleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rf, err := h.svc.CreateRaffle(r.Context(), req)
	if err != nil {
		serviceError(w, err)
		return
	}

	jsonCreated(w, rf)
}

// AdminGetRaffle returns the full raffle document including pending
// purchases and confirmed buyers.
func (h *Handler) AdminGetRaffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rf, err := h.svc.GetRaffle(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, rf)
}

// FinishRaffle marks a raffle as finished.
func (h *Handler) FinishRaffle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.FinishRaffle(r.Context(), id); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{"success": true})
}

// ListPending returns the pending purchase queue for a raffle.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rf, err := h.svc.GetRaffle(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	pending := rf.PendingPurchases
	if pending == nil {
		pending = []models.PendingPurchase{}
	}
	jsonResponse(w, pending)
}

// ApprovePurchase confirms a pending purchase and returns the
// assignment plus the email template parameters.
func (h *Handler) ApprovePurchase(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "id")
	purchaseID := chi.URLParam(r, "purchaseID")

	result, err := h.svc.Approve(r.Context(), raffleID, purchaseID)
	if err != nil {
		serviceError(w, err)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"success":         true,
		"purchase":        result.Purchase,
		"assignedTickets": result.AssignedTickets,
		"templateParams":  result.TemplateParams,
	})
}

// RejectPurchase removes a pending purchase and releases its tickets.
func (h *Handler) RejectPurchase(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "id")
	purchaseID := chi.URLParam(r, "purchaseID")

	if err := h.svc.Reject(r.Context(), raffleID, purchaseID); err != nil {
		serviceError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{"success": true})
}
