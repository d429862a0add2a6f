package reconcile_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmv/statementiq/internal/reconcile"
	"github.com/akhilmv/statementiq/internal/transaction"
)

func debit(y int, m time.Month, d int, paise int64, conf float64) transaction.Transaction {
	amount := paise

	return transaction.Transaction{
		ID:         uuid.New(),
		Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		DebitPaise: &amount,
		Confidence: conf,
	}
}

func credit(y int, m time.Month, d int, paise int64) transaction.Transaction {
	amount := paise

	return transaction.Transaction{
		ID:          uuid.New(),
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CreditPaise: &amount,
		Confidence:  1,
	}
}

func TestMatch_ExactSubset(t *testing.T) {
	anchor := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 10, 200000, 0.9),
		debit(2024, 3, 12, 300000, 0.5),
		// Exceeds the target, never enters the search.
		debit(2024, 3, 15, 600000, 1.0),
	}

	res := reconcile.Match(txs, anchor, 500000)

	require.Len(t, res.MatchedDebits, 2)
	assert.Equal(t, int64(200000), *res.MatchedDebits[0].DebitPaise)
	assert.Equal(t, int64(300000), *res.MatchedDebits[1].DebitPaise)
	assert.Equal(t, int64(500000), res.TotalMatchedPaise)
	assert.Equal(t, int64(0), res.DifferencePaise)
	assert.InDelta(t, 100, res.Accuracy, 1e-9)
}

func TestMatch_ResultSortedByDate(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 20, 100000, 0.8),
		debit(2024, 3, 5, 400000, 0.8),
	}

	res := reconcile.Match(txs, anchor, 500000)

	require.Len(t, res.MatchedDebits, 2)
	assert.True(t, res.MatchedDebits[0].Date.Before(res.MatchedDebits[1].Date))
}

func TestMatch_ConfidenceTieBreak(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 2, 200000, 0.5),
		debit(2024, 3, 3, 100000, 0.5),
		debit(2024, 3, 4, 300000, 0.9),
	}

	res := reconcile.Match(txs, anchor, 300000)

	// Both {2000, 1000} and {3000} sum to the target; the single item has
	// the higher average confidence.
	require.Len(t, res.MatchedDebits, 1)
	assert.Equal(t, int64(300000), *res.MatchedDebits[0].DebitPaise)
	assert.Equal(t, 0.9, res.MatchedDebits[0].Confidence)
}

func TestMatch_DateFilterExcludesEarlierDebits(t *testing.T) {
	anchor := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 9, 300000, 1),
		debit(2024, 3, 10, 100000, 1),
	}

	res := reconcile.Match(txs, anchor, 500000)

	require.Len(t, res.MatchedDebits, 1)
	assert.Equal(t, int64(100000), *res.MatchedDebits[0].DebitPaise)
	assert.Equal(t, int64(400000), res.DifferencePaise)
	assert.InDelta(t, 20, res.Accuracy, 1e-9)
}

func TestMatch_LoweredTargetKeepsAnchorDate(t *testing.T) {
	anchor := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 9, 50000, 1),
		debit(2024, 3, 11, 150000, 1),
		debit(2024, 3, 12, 100000, 1),
	}

	full := reconcile.Match(txs, anchor, 250000)
	require.Len(t, full.MatchedDebits, 2)

	// Lowering the target narrows the amount ceiling only; the debit from
	// before the anchor date stays excluded even though it now fits.
	lowered := reconcile.Match(txs, anchor, 100000)
	require.Len(t, lowered.MatchedDebits, 1)
	assert.Equal(t, int64(100000), *lowered.MatchedDebits[0].DebitPaise)
}

func TestMatch_Idempotent(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{
		debit(2024, 3, 2, 120000, 0.7),
		debit(2024, 3, 3, 80000, 0.6),
		debit(2024, 3, 4, 230000, 0.9),
		debit(2024, 3, 5, 40000, 0.4),
	}

	first := reconcile.Match(txs, anchor, 350000)
	second := reconcile.Match(txs, anchor, 350000)

	assert.Equal(t, first, second)
}

func TestMatch_ZeroTarget(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []transaction.Transaction{debit(2024, 3, 2, 100000, 1)}

	res := reconcile.Match(txs, anchor, 0)

	assert.Empty(t, res.MatchedDebits)
	assert.Equal(t, int64(0), res.TotalMatchedPaise)
	assert.Equal(t, float64(0), res.Accuracy)
}

func TestMatch_IgnoresCreditsAndZeroDebits(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	zero := int64(0)
	txs := []transaction.Transaction{
		credit(2024, 3, 2, 100000),
		{ID: uuid.New(), Date: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), DebitPaise: &zero},
		debit(2024, 3, 4, 70000, 1),
	}

	res := reconcile.Match(txs, anchor, 100000)

	require.Len(t, res.MatchedDebits, 1)
	assert.Equal(t, int64(70000), *res.MatchedDebits[0].DebitPaise)
}

func TestMatch_VisitBudgetReturnsBestSoFar(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Enough near-identical items to exhaust the visit budget without an
	// exact hit. The search must still return a non-empty approximation.
	txs := make([]transaction.Transaction, 40)
	for i := range txs {
		txs[i] = debit(2024, 2, 1+i%28, int64(100001+i), 0.8)
	}

	res := reconcile.Match(txs, anchor, 999999)

	assert.NotEmpty(t, res.MatchedDebits)
	assert.LessOrEqual(t, res.TotalMatchedPaise, int64(999999))
	assert.Positive(t, res.Accuracy)
}

func TestMatchCredit_UsesCreditAmountAsTarget(t *testing.T) {
	sel := credit(2024, 3, 10, 500000)
	txs := []transaction.Transaction{
		sel,
		debit(2024, 3, 11, 200000, 0.9),
		debit(2024, 3, 12, 300000, 0.5),
	}

	res := reconcile.MatchCredit(txs, sel)

	assert.Equal(t, int64(500000), res.TotalMatchedPaise)
	assert.InDelta(t, 100, res.Accuracy, 1e-9)
}
