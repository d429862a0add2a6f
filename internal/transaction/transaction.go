package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Bank identifies the institution a statement was parsed from.
type Bank string

const (
	BankSBI     Bank = "SBI"
	BankSIB     Bank = "SIB"
	BankUnknown Bank = "UNKNOWN"
)

// Transaction is one normalized statement line. Amounts are stored in paise
// (integer minor units); floats exist only at the JSON edges. DebitPaise and
// CreditPaise are nil when absent and are never both positive.
type Transaction struct {
	ID          uuid.UUID
	Date        time.Time // UTC, time-of-day zero
	Description string
	DebitPaise  *int64
	CreditPaise *int64
	// BalancePaise is the running balance after this line, as stated by the source.
	BalancePaise int64
	// Confidence is the parse certainty in [0,1].
	Confidence float64
	Flagged    bool
}

// IsDebit reports whether the transaction carries a positive debit amount.
func (t Transaction) IsDebit() bool {
	return t.DebitPaise != nil && *t.DebitPaise > 0
}

// IsCredit reports whether the transaction carries a positive credit amount.
func (t Transaction) IsCredit() bool {
	return t.CreditPaise != nil && *t.CreditPaise > 0
}

// Analytics are the per-statement aggregates reported by the parse service
// and summed across files when a batch finalizes.
type Analytics struct {
	TotalCreditPaise int64
	TotalDebitPaise  int64
	NetCashFlowPaise int64
	FlaggedCount     int
}

// Statement is one parsed file, or the combined result of a finalized batch.
type Statement struct {
	Bank         Bank
	FileName     string
	Transactions []Transaction
	Analytics    Analytics
}

// FlagAll returns a new transaction list with the given IDs marked flagged,
// plus the number of newly flagged rows. Flagging is the one permitted
// mutation and is applied as a full-list replace so concurrent readers never
// observe a half-updated list.
func FlagAll(txs []Transaction, ids []uuid.UUID) ([]Transaction, int) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	var flagged int

	out := make([]Transaction, len(txs))
	for i, t := range txs {
		if want[t.ID] && !t.Flagged {
			t.Flagged = true
			flagged++
		}

		out[i] = t
	}

	return out, flagged
}
