// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/app"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

type Handlers struct {
	Sched *app.Scheduler
	Proc  *app.Processor
	Repo  domain.PropertyRepository
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/status", h.status)
	s.mux.Post("/v1/properties/{externalID}/translate", h.translateOne)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type statusResponse struct {
	LastCycle app.CycleStats `json:"last_cycle"`
	Pending   int64          `json:"pending"`
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{LastCycle: h.Sched.LastStats()}
	if n, err := h.Repo.PendingCount(r.Context()); err == nil {
		resp.Pending = n
	} else {
		log.Warn().Err(err).Msg("pending count failed")
	}
	writeJSON(w, http.StatusOK, resp)
}

type translationOut struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Origin      string  `json:"origin"`
}

type translateResponse struct {
	PropertyID   int64                              `json:"property_id"`
	ExternalID   string                             `json:"external_id"`
	Applied      bool                               `json:"applied"`
	Translations map[domain.Language]translationOut `json:"translations"`
}

// translateOne processes a single property synchronously, bypassing
// discovery. Diagnostic use only; it applies the same processing and
// persistence path as the batch cycle.
func (h *Handlers) translateOne(w http.ResponseWriter, r *http.Request) {
	externalID := chi.URLParam(r, "externalID")

	cand, err := h.Repo.FindByExternalID(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no property with external id "+externalID)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Lookup Failed", err.Error())
		return
	}

	upd, err := h.Proc.Process(r.Context(), cand)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Canceled", err.Error())
		return
	}

	resp := translateResponse{
		PropertyID:   cand.ID,
		ExternalID:   cand.ExternalID,
		Translations: make(map[domain.Language]translationOut, len(upd.Translations)),
	}
	for _, t := range upd.Translations {
		resp.Translations[t.Language] = translationOut{
			Title:       t.Title,
			Description: t.Description,
			Origin:      string(t.Origin),
		}
	}

	if !upd.Empty() {
		if err := h.Repo.ApplyUpdate(r.Context(), upd); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Update Failed", err.Error())
			return
		}
		resp.Applied = true
	}
	writeJSON(w, http.StatusOK, resp)
}
