package queue

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/akhilmv/statementiq/internal/http/session"
	"github.com/akhilmv/statementiq/internal/uploader"
)

type Handler struct {
	sessions session.Resolver
}

func NewHandler(sessions session.Resolver) *Handler {
	return &Handler{sessions: sessions}
}

// UploadRoutes registers the batch-submission endpoint.
func (h *Handler) UploadRoutes(r chi.Router) {
	r.Post("/statements", h.upload)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.status)
	r.Post("/password", h.password)
	r.Post("/skip", h.skip)
	r.Delete("/{index}", h.remove)
}

type entryResponse struct {
	FileName string          `json:"file_name"`
	Size     int64           `json:"size"`
	Status   uploader.Status `json:"status"`
	Error    string          `json:"error,omitempty"`
}

type queueResponse struct {
	Entries          []entryResponse `json:"entries"`
	AwaitingPassword int             `json:"awaiting_password"`
	Processing       bool            `json:"processing"`
	Finalized        bool            `json:"finalized"`
	Banner           string          `json:"banner,omitempty"`
}

func toResponse(state uploader.State) queueResponse {
	resp := queueResponse{
		Entries:          make([]entryResponse, len(state.Entries)),
		AwaitingPassword: state.Awaiting,
		Processing:       state.Processing,
		Finalized:        state.Finalized,
		Banner:           state.Banner,
	}

	for i, e := range state.Entries {
		resp.Entries[i] = entryResponse{
			FileName: e.File.Name,
			Size:     e.File.Size,
			Status:   e.Status,
			Error:    e.Err,
		}
	}

	return resp
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	// Per-file size is validated by the orchestrator; this caps the whole
	// request body.
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "files field is required", http.StatusBadRequest)
		return
	}

	files := make([]uploader.File, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(f)
		f.Close()

		if err != nil {
			http.Error(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
			return
		}

		files = append(files, uploader.File{Name: fh.Filename, Size: fh.Size, Data: data})
	}

	if err := sess.Uploader.Enqueue(r.Context(), files); err != nil {
		if errors.Is(err, uploader.ErrBatchInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	h.writeStatus(w, sess.Uploader.Snapshot(), http.StatusAccepted)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	h.writeStatus(w, sess.Uploader.Snapshot(), http.StatusOK)
}

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) password(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Password == "" {
		http.Error(w, "password is required", http.StatusBadRequest)
		return
	}

	sess.Uploader.SubmitPassword(r.Context(), req.Password)

	h.writeStatus(w, sess.Uploader.Snapshot(), http.StatusOK)
}

func (h *Handler) skip(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	sess.Uploader.Skip(r.Context())

	h.writeStatus(w, sess.Uploader.Snapshot(), http.StatusOK)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	if err := sess.Uploader.Remove(r.Context(), index); err != nil {
		if errors.Is(err, uploader.ErrEntryProcessing) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	h.writeStatus(w, sess.Uploader.Snapshot(), http.StatusOK)
}

func (h *Handler) writeStatus(w http.ResponseWriter, state uploader.State, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(toResponse(state)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
