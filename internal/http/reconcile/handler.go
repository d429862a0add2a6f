package reconcile

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akhilmv/statementiq/internal/http/session"
	"github.com/akhilmv/statementiq/internal/reconcile"
	"github.com/akhilmv/statementiq/internal/transaction"
)

type Handler struct {
	sessions session.Resolver
}

func NewHandler(sessions session.Resolver) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/reconcile", h.reconcile)
}

type reconcileRequest struct {
	CreditID uuid.UUID `json:"credit_id"`
	// TargetAmount overrides the credit's own amount when set. The date
	// filter stays anchored to the credit regardless.
	TargetAmount *float64 `json:"target_amount,omitempty"`
}

type matchedDebitResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Confidence  float64   `json:"confidence"`
}

type reconcileResponse struct {
	MatchedDebits []matchedDebitResponse `json:"matched_debits"`
	TotalMatched  float64                `json:"total_matched"`
	Difference    float64                `json:"difference"`
	Accuracy      float64                `json:"accuracy"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st := sess.Statement()
	if st == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	credit, ok := findCredit(st.Transactions, req.CreditID)
	if !ok {
		http.Error(w, "credit transaction not found", http.StatusNotFound)
		return
	}

	target := *credit.CreditPaise
	if req.TargetAmount != nil {
		target = transaction.PaiseFromFloat(*req.TargetAmount)
	}

	result := reconcile.Match(st.Transactions, credit.Date, target)

	resp := reconcileResponse{
		MatchedDebits: make([]matchedDebitResponse, len(result.MatchedDebits)),
		TotalMatched:  transaction.PaiseToFloat(result.TotalMatchedPaise),
		Difference:    transaction.PaiseToFloat(result.DifferencePaise),
		Accuracy:      result.Accuracy,
	}

	for i, d := range result.MatchedDebits {
		resp.MatchedDebits[i] = matchedDebitResponse{
			ID:          d.ID,
			Date:        d.Date.Format(time.DateOnly),
			Description: d.Description,
			Amount:      transaction.PaiseToFloat(*d.DebitPaise),
			Confidence:  d.Confidence,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func findCredit(txs []transaction.Transaction, id uuid.UUID) (transaction.Transaction, bool) {
	for _, tx := range txs {
		if tx.ID == id && tx.IsCredit() {
			return tx, true
		}
	}

	return transaction.Transaction{}, false
}
