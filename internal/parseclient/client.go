// Package parseclient talks to the external statement-parsing service. The
// service owns all PDF/OCR work; this client only uploads files and maps the
// response into the local transaction model.
package parseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/akhilmv/statementiq/internal/transaction"
)

// ErrPasswordRequired signals the distinguished 422 response for a
// password-protected PDF. It is a pipeline pause condition, not a failure.
var ErrPasswordRequired = errors.New("statement is password protected")

// APIError is any other non-2xx response from the parse service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("parse service returned status %d", e.Status)
}

type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the parse service at baseURL. The client carries
// no request timeout: an in-flight parse is never aborted once started, and a
// hung request stalls the owning queue until the service responds.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

type rawTransaction struct {
	ID          int64    `json:"id"`
	TxnDate     string   `json:"txn_date"`
	Description string   `json:"description"`
	Debit       *float64 `json:"debit"`
	Credit      *float64 `json:"credit"`
	Balance     float64  `json:"balance"`
	Confidence  float64  `json:"confidence"`
	IsFlagged   bool     `json:"is_flagged"`
}

type rawAnalytics struct {
	TotalCredit  float64 `json:"totalCredit"`
	TotalDebit   float64 `json:"totalDebit"`
	NetCashFlow  float64 `json:"netCashFlow"`
	FlaggedCount int     `json:"flaggedCount"`
}

type parseResponse struct {
	Bank         string           `json:"bank"`
	Transactions []rawTransaction `json:"transactions"`
	Analytics    rawAnalytics     `json:"analytics"`
}

type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Parse uploads one PDF (with an optional password) and returns the parsed
// statement. Error cases: ErrPasswordRequired for the password challenge,
// *APIError for any other server rejection, and plain transport errors.
func (c *Client) Parse(ctx context.Context, filename string, data []byte, password string) (*transaction.Statement, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building form: %w", err)
	}

	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}

	if err := mw.WriteField("password", password); err != nil {
		return nil, fmt.Errorf("writing password field: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var pr parseResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return toStatement(filename, pr)
}

// decodeError maps a non-2xx body to a typed error. A 422 carrying the
// explicit PASSWORD_REQUIRED code, or any 422 whose message mentions
// "password", is the challenge case.
func decodeError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	var detail errorDetail
	if len(er.Detail) > 0 {
		if err := json.Unmarshal(er.Detail, &detail); err != nil {
			// FastAPI-style services sometimes return detail as a bare string.
			_ = json.Unmarshal(er.Detail, &detail.Message)
		}
	}

	if status == http.StatusUnprocessableEntity {
		if detail.Code == "PASSWORD_REQUIRED" || strings.Contains(strings.ToLower(detail.Message), "password") {
			return ErrPasswordRequired
		}
	}

	if detail.Message == "" {
		detail.Message = "failed to parse statement"
	}

	return &APIError{Status: status, Code: detail.Code, Message: detail.Message}
}

func toStatement(filename string, pr parseResponse) (*transaction.Statement, error) {
	txs := make([]transaction.Transaction, 0, len(pr.Transactions))

	for _, r := range pr.Transactions {
		date, err := transaction.ParseDate(r.TxnDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", r.ID, err)
		}

		txs = append(txs, transaction.Transaction{
			ID:           uuid.New(),
			Date:         date,
			Description:  r.Description,
			DebitPaise:   toPaise(r.Debit),
			CreditPaise:  toPaise(r.Credit),
			BalancePaise: transaction.PaiseFromFloat(r.Balance),
			Confidence:   r.Confidence,
			Flagged:      r.IsFlagged,
		})
	}

	return &transaction.Statement{
		Bank:         toBank(pr.Bank),
		FileName:     filename,
		Transactions: txs,
		Analytics: transaction.Analytics{
			TotalCreditPaise: transaction.PaiseFromFloat(pr.Analytics.TotalCredit),
			TotalDebitPaise:  transaction.PaiseFromFloat(pr.Analytics.TotalDebit),
			NetCashFlowPaise: transaction.PaiseFromFloat(pr.Analytics.NetCashFlow),
			FlaggedCount:     pr.Analytics.FlaggedCount,
		},
	}, nil
}

func toPaise(v *float64) *int64 {
	if v == nil {
		return nil
	}

	p := transaction.PaiseFromFloat(*v)

	return &p
}

func toBank(s string) transaction.Bank {
	switch s {
	case "SBI":
		return transaction.BankSBI
	case "SIB":
		return transaction.BankSIB
	}

	return transaction.BankUnknown
}
