package transaction_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmv/statementiq/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func paise(v int64) *int64 { return &v }

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "SlashFullYear", input: "10/03/2024", want: date(2024, 3, 10)},
		{name: "DashShortYear", input: "10-03-24", want: date(2024, 3, 10)},
		{name: "SlashShortYear", input: "10/03/24", want: date(2024, 3, 10)},
		{name: "Whitespace", input: " 01/12/2023 ", want: date(2023, 12, 1)},
		{name: "ISONotAccepted", input: "2024-03-10", wantErr: true},
		{name: "Garbage", input: "not a date", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.ParseDate(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestPaiseFromFloat(t *testing.T) {
	assert.Equal(t, int64(500000), transaction.PaiseFromFloat(5000.00))
	assert.Equal(t, int64(4055), transaction.PaiseFromFloat(40.55))
	assert.Equal(t, int64(1), transaction.PaiseFromFloat(0.005))
	assert.Equal(t, int64(0), transaction.PaiseFromFloat(0))
}

func TestParsePaise(t *testing.T) {
	got, err := transaction.ParsePaise("5000.50")
	require.NoError(t, err)
	assert.Equal(t, int64(500050), got)

	got, err = transaction.ParsePaise("5000")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), got)

	_, err = transaction.ParsePaise("five thousand")
	assert.Error(t, err)
}

func TestFlagAll(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	txs := []transaction.Transaction{
		{ID: ids[0], Confidence: 0.4},
		{ID: ids[1], Confidence: 0.9},
		{ID: ids[2], Confidence: 0.95, Flagged: true},
	}

	got, n := transaction.FlagAll(txs, []uuid.UUID{ids[0], ids[2]})

	assert.Equal(t, 1, n, "already-flagged rows are not counted again")
	require.Len(t, got, 3)
	assert.True(t, got[0].Flagged)
	assert.False(t, got[1].Flagged)
	assert.True(t, got[2].Flagged, "already-flagged entries stay flagged")

	// Input list is untouched; flagging is a full-list replace.
	assert.False(t, txs[0].Flagged)
}

func TestSummarize(t *testing.T) {
	txs := []transaction.Transaction{
		{ID: uuid.New(), Date: date(2024, 1, 5), CreditPaise: paise(500000), BalancePaise: 500000, Confidence: 1.0},
		{ID: uuid.New(), Date: date(2024, 1, 10), DebitPaise: paise(200000), BalancePaise: 300000, Confidence: 0.8},
		{ID: uuid.New(), Date: date(2024, 2, 1), DebitPaise: paise(50000), BalancePaise: 250000, Confidence: 0.6, Flagged: true},
	}

	s := transaction.Summarize(txs)

	assert.Equal(t, int64(500000), s.TotalCreditPaise)
	assert.Equal(t, int64(250000), s.TotalDebitPaise)
	assert.Equal(t, int64(250000), s.NetCashFlowPaise)
	assert.Equal(t, 1, s.FlaggedCount)
	assert.Equal(t, 3, s.RowCount)

	require.NotNil(t, s.HighestDebit)
	assert.Equal(t, int64(200000), *s.HighestDebit.DebitPaise)

	require.Len(t, s.MonthlyTotals, 2)
	assert.Equal(t, "2024-01", s.MonthlyTotals[0].Month)
	assert.Equal(t, int64(500000), s.MonthlyTotals[0].TotalCreditPaise)
	assert.Equal(t, int64(200000), s.MonthlyTotals[0].TotalDebitPaise)
	assert.Equal(t, "2024-02", s.MonthlyTotals[1].Month)

	assert.InDelta(t, 0.8, s.Quality.AvgConfidence, 1e-9)
	assert.Equal(t, 0, s.Quality.BalanceMismatches)
}

func TestSummarize_BalanceMismatch(t *testing.T) {
	txs := []transaction.Transaction{
		{ID: uuid.New(), Date: date(2024, 1, 5), CreditPaise: paise(100000), BalancePaise: 100000, Confidence: 1},
		// Stated balance disagrees with 100000 - 40000.
		{ID: uuid.New(), Date: date(2024, 1, 6), DebitPaise: paise(40000), BalancePaise: 70000, Confidence: 1},
	}

	s := transaction.Summarize(txs)
	assert.Equal(t, 1, s.Quality.BalanceMismatches)
}

func TestSummarize_Empty(t *testing.T) {
	s := transaction.Summarize(nil)

	assert.Zero(t, s.TotalCreditPaise)
	assert.Nil(t, s.HighestDebit)
	assert.Empty(t, s.MonthlyTotals)
	assert.Zero(t, s.Quality.AvgConfidence)
}
