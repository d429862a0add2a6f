package statement

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akhilmv/statementiq/internal/http/session"
	"github.com/akhilmv/statementiq/internal/transaction"
)

type Handler struct {
	sessions session.Resolver
}

func NewHandler(sessions session.Resolver) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions", h.list)
	r.Post("/transactions/flag", h.flag)
	r.Get("/analytics", h.analytics)
}

type transactionResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Debit       *float64  `json:"debit"`
	Credit      *float64  `json:"credit"`
	Balance     float64   `json:"balance"`
	Confidence  float64   `json:"confidence"`
	Flagged     bool      `json:"flagged"`
}

type statementResponse struct {
	Bank         transaction.Bank      `json:"bank"`
	FileName     string                `json:"file_name"`
	Transactions []transactionResponse `json:"transactions"`
}

func toTxResponse(tx transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Description: tx.Description,
		Balance:     transaction.PaiseToFloat(tx.BalancePaise),
		Confidence:  tx.Confidence,
		Flagged:     tx.Flagged,
	}

	if tx.DebitPaise != nil {
		v := transaction.PaiseToFloat(*tx.DebitPaise)
		resp.Debit = &v
	}

	if tx.CreditPaise != nil {
		v := transaction.PaiseToFloat(*tx.CreditPaise)
		resp.Credit = &v
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	st := sess.Statement()
	if st == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	resp := statementResponse{
		Bank:         st.Bank,
		FileName:     st.FileName,
		Transactions: make([]transactionResponse, len(st.Transactions)),
	}

	for i, tx := range st.Transactions {
		resp.Transactions[i] = toTxResponse(tx)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type flagRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type flagResponse struct {
	Flagged int `json:"flagged"`
}

func (h *Handler) flag(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if sess.Statement() == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	n := sess.FlagTransactions(req.IDs)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(flagResponse{Flagged: n}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type monthlyResponse struct {
	Month       string  `json:"month"`
	TotalCredit float64 `json:"total_credit"`
	TotalDebit  float64 `json:"total_debit"`
}

type analyticsResponse struct {
	TotalCredit       float64              `json:"total_credit"`
	TotalDebit        float64              `json:"total_debit"`
	NetCashFlow       float64              `json:"net_cash_flow"`
	FlaggedCount      int                  `json:"flagged_count"`
	RowCount          int                  `json:"row_count"`
	HighestDebit      *transactionResponse `json:"highest_debit,omitempty"`
	Monthly           []monthlyResponse    `json:"monthly"`
	AvgConfidence     float64              `json:"avg_confidence"`
	BalanceMismatches int                  `json:"balance_mismatches"`
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions(w, r)
	if !ok {
		return
	}

	st := sess.Statement()
	if st == nil {
		http.Error(w, "no statement available", http.StatusNotFound)
		return
	}

	summary := transaction.Summarize(st.Transactions)

	resp := analyticsResponse{
		TotalCredit:       transaction.PaiseToFloat(summary.TotalCreditPaise),
		TotalDebit:        transaction.PaiseToFloat(summary.TotalDebitPaise),
		NetCashFlow:       transaction.PaiseToFloat(summary.NetCashFlowPaise),
		FlaggedCount:      summary.FlaggedCount,
		RowCount:          summary.RowCount,
		Monthly:           make([]monthlyResponse, len(summary.MonthlyTotals)),
		AvgConfidence:     summary.Quality.AvgConfidence,
		BalanceMismatches: summary.Quality.BalanceMismatches,
	}

	if summary.HighestDebit != nil {
		v := toTxResponse(*summary.HighestDebit)
		resp.HighestDebit = &v
	}

	for i, m := range summary.MonthlyTotals {
		resp.Monthly[i] = monthlyResponse{
			Month:       m.Month,
			TotalCredit: transaction.PaiseToFloat(m.TotalCreditPaise),
			TotalDebit:  transaction.PaiseToFloat(m.TotalDebitPaise),
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
