package export

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akhilmv/statementiq/internal/export"
	"github.com/akhilmv/statementiq/internal/http/session"
)

type Handler struct {
	sessions session.Resolver
	svc      *export.Service
}

func NewHandler(sessions session.Resolver, svc *export.Service) *Handler {
	return &Handler{sessions: sessions, svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
	r.Get("/xlsx", h.xlsx)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	st := sess.Statement()
	if st == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.csv"`)

	if err := h.svc.WriteCSV(w, st); err != nil {
		slog.Error("failed to write csv export", "error", err)
	}
}

func (h *Handler) xlsx(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	st := sess.Statement()
	if st == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.xlsx"`)

	if err := h.svc.WriteXLSX(w, st); err != nil {
		slog.Error("failed to write xlsx export", "error", err)
	}
}
