package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akhilmv/statementiq/internal/session"
	"github.com/akhilmv/statementiq/internal/uploader"
)

// Resolver looks up the session addressed by the request URL. On failure it
// writes the error response and returns false.
type Resolver func(w http.ResponseWriter, r *http.Request) (*session.Session, bool)

type Handler struct {
	store  *session.Store
	parser uploader.Parser
}

func NewHandler(store *session.Store, parser uploader.Parser) *Handler {
	return &Handler{store: store, parser: parser}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

// DetailRoutes registers the routes below /{sessionID}.
func (h *Handler) DetailRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Delete("/", h.delete)
}

// Resolve implements Resolver against the handler's store.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return nil, false
	}

	sess, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return nil, false
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return nil, false
	}

	return sess, true
}

type sessionResponse struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresInSec int64     `json:"expires_in_sec"`
	HasStatement bool      `json:"has_statement"`
	Transactions int       `json:"transactions"`
}

func toResponse(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		ExpiresAt:    sess.ExpiresAt,
		ExpiresInSec: int64(sess.Remaining(time.Now().UTC()) / time.Second),
	}

	if st := sess.Statement(); st != nil {
		resp.HasStatement = true
		resp.Transactions = len(st.Transactions)
	}

	return resp
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create(h.parser)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(sess)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Resolve(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(sess)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Resolve(w, r)
	if !ok {
		return
	}

	h.store.Delete(sess.ID)

	w.WriteHeader(http.StatusNoContent)
}
