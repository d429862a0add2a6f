package parseclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmv/statementiq/internal/parseclient"
	"github.com/akhilmv/statementiq/internal/transaction"
)

const successBody = `{
	"bank": "SIB",
	"transactions": [
		{"id": 1, "txn_date": "10/03/2024", "description": "NEFT CR", "debit": null, "credit": 5000.00, "balance": 15000.00, "confidence": 0.95, "is_flagged": false},
		{"id": 2, "txn_date": "12-03-24", "description": "ATM WDL", "debit": 2000.50, "credit": null, "balance": 12999.50, "confidence": 0.6, "is_flagged": true}
	],
	"analytics": {"totalCredit": 5000.00, "totalDebit": 2000.50, "netCashFlow": 2999.50, "flaggedCount": 1}
}`

func TestClient_Parse_Success(t *testing.T) {
	var gotPassword, gotFilename string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/parse", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(16<<20))

		gotPassword = r.FormValue("password")

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotFilename = fh.Filename

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(successBody))
	}))
	defer srv.Close()

	c := parseclient.New(srv.URL)

	stmt, err := c.Parse(context.Background(), "march.pdf", []byte("%PDF-1.4"), "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "march.pdf", gotFilename)
	assert.Equal(t, "hunter2", gotPassword)

	assert.Equal(t, transaction.BankSIB, stmt.Bank)
	assert.Equal(t, "march.pdf", stmt.FileName)
	require.Len(t, stmt.Transactions, 2)

	first := stmt.Transactions[0]
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Nil(t, first.DebitPaise)
	require.NotNil(t, first.CreditPaise)
	assert.Equal(t, int64(500000), *first.CreditPaise)
	assert.Equal(t, int64(1500000), first.BalancePaise)
	assert.NotEqual(t, first.ID, stmt.Transactions[1].ID)

	second := stmt.Transactions[1]
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), second.Date)
	require.NotNil(t, second.DebitPaise)
	assert.Equal(t, int64(200050), *second.DebitPaise)
	assert.True(t, second.Flagged)

	assert.Equal(t, int64(500000), stmt.Analytics.TotalCreditPaise)
	assert.Equal(t, int64(200050), stmt.Analytics.TotalDebitPaise)
	assert.Equal(t, int64(299950), stmt.Analytics.NetCashFlowPaise)
	assert.Equal(t, 1, stmt.Analytics.FlaggedCount)
}

func TestClient_Parse_PasswordRequired(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "ExplicitCode",
			body: `{"detail": {"code": "PASSWORD_REQUIRED", "message": "This file is password protected."}}`,
		},
		{
			name: "MessageSubstring",
			body: `{"detail": {"message": "A Password is needed to open this file"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := parseclient.New(srv.URL)

			_, err := c.Parse(context.Background(), "locked.pdf", []byte("%PDF"), "")
			assert.ErrorIs(t, err, parseclient.ErrPasswordRequired)
		})
	}
}

func TestClient_Parse_ServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": {"code": "NO_TRANSACTIONS", "message": "No transactions found."}}`))
	}))
	defer srv.Close()

	c := parseclient.New(srv.URL)

	_, err := c.Parse(context.Background(), "empty.pdf", []byte("%PDF"), "")

	var apiErr *parseclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "NO_TRANSACTIONS", apiErr.Code)
	assert.Equal(t, "No transactions found.", apiErr.Message)
	assert.NotErrorIs(t, err, parseclient.ErrPasswordRequired)
}

func TestClient_Parse_GenericFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := parseclient.New(srv.URL)

	_, err := c.Parse(context.Background(), "a.pdf", []byte("%PDF"), "")

	var apiErr *parseclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "failed to parse statement", apiErr.Message)
}

func TestClient_Parse_StringDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "malformed upload"}`))
	}))
	defer srv.Close()

	c := parseclient.New(srv.URL)

	_, err := c.Parse(context.Background(), "a.pdf", []byte("%PDF"), "")

	var apiErr *parseclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "malformed upload", apiErr.Message)
}

func TestClient_Parse_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	c := parseclient.New(srv.URL)

	_, err := c.Parse(context.Background(), "a.pdf", []byte("%PDF"), "")
	assert.Error(t, err)
}

func TestClient_Parse_BadDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bank": "SBI", "transactions": [{"id": 7, "txn_date": "2024/03/10", "description": "x", "balance": 0, "confidence": 1}], "analytics": {}}`))
	}))
	defer srv.Close()

	c := parseclient.New(srv.URL)

	_, err := c.Parse(context.Background(), "a.pdf", []byte("%PDF"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction 7")
}
