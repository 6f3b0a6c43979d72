package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fjod/go_meals/internal/contact"
)

type ContactHandler struct {
	contact *contact.Service
	log     *slog.Logger
}

func NewContactHandler(svc *contact.Service, log *slog.Logger) *ContactHandler {
	return &ContactHandler{contact: svc, log: log}
}

type ContactResponseDTO struct {
	Notice          string `json:"notice"`
	RedirectURL     string `json:"redirect_url"`
	RedirectAfterMS int64  `json:"redirect_after_ms"`
}

// POST /api/v1/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.contact.Submit(r.Context(), form)
	if err != nil {
		handleServiceError(r.Context(), w, h.log, err)
		return
	}

	setRefresh(w, res.RedirectAfter, res.RedirectURL)
	respondJSON(w, http.StatusAccepted, ContactResponseDTO{
		Notice:          res.Notice,
		RedirectURL:     res.RedirectURL,
		RedirectAfterMS: res.RedirectAfter.Milliseconds(),
	})
}
