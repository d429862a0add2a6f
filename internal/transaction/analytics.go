package transaction

import (
	"sort"
)

// Summary extends the per-file Analytics with the derived figures the
// dashboard shows for a combined batch.
type Summary struct {
	Analytics
	RowCount      int
	HighestDebit  *Transaction
	MonthlyTotals []MonthlyTotal
	Quality       Quality
}

// MonthlyTotal aggregates credit and debit volume for one calendar month.
type MonthlyTotal struct {
	Month            string // "2006-01"
	TotalCreditPaise int64
	TotalDebitPaise  int64
}

// Quality reports how trustworthy the parsed batch looks.
type Quality struct {
	TotalRows         int
	FlaggedRows       int
	AvgConfidence     float64
	BalanceMismatches int
}

// Summarize recomputes batch-level analytics from the transaction list.
// The parse service reports per-file analytics; this derives the rest
// (highest debit, monthly trends, quality) locally.
func Summarize(txs []Transaction) Summary {
	s := Summary{RowCount: len(txs)}

	monthly := make(map[string]*MonthlyTotal)

	var confidenceSum float64

	for i := range txs {
		t := &txs[i]

		month := t.Date.Format("2006-01")

		mt, ok := monthly[month]
		if !ok {
			mt = &MonthlyTotal{Month: month}
			monthly[month] = mt
		}

		if t.IsCredit() {
			s.TotalCreditPaise += *t.CreditPaise
			mt.TotalCreditPaise += *t.CreditPaise
		}

		if t.IsDebit() {
			s.TotalDebitPaise += *t.DebitPaise
			mt.TotalDebitPaise += *t.DebitPaise

			if s.HighestDebit == nil || *t.DebitPaise > *s.HighestDebit.DebitPaise {
				s.HighestDebit = t
			}
		}

		if t.Flagged {
			s.FlaggedCount++
		}

		confidenceSum += t.Confidence
	}

	s.NetCashFlowPaise = s.TotalCreditPaise - s.TotalDebitPaise

	for _, mt := range monthly {
		s.MonthlyTotals = append(s.MonthlyTotals, *mt)
	}

	sort.Slice(s.MonthlyTotals, func(i, j int) bool {
		return s.MonthlyTotals[i].Month < s.MonthlyTotals[j].Month
	})

	s.Quality = Quality{
		TotalRows:         len(txs),
		FlaggedRows:       s.FlaggedCount,
		BalanceMismatches: balanceMismatches(txs),
	}
	if len(txs) > 0 {
		s.Quality.AvgConfidence = confidenceSum / float64(len(txs))
	}

	return s
}

// balanceMismatches counts lines whose stated running balance disagrees with
// the previous balance adjusted by the line's amounts. Only consecutive lines
// within one file are comparable, so the check resets across date regressions
// (a new file's opening line).
func balanceMismatches(txs []Transaction) int {
	var mismatches int

	for i := 1; i < len(txs); i++ {
		prev, cur := txs[i-1], txs[i]

		if cur.Date.Before(prev.Date) {
			continue
		}

		expected := prev.BalancePaise

		if cur.IsCredit() {
			expected += *cur.CreditPaise
		}

		if cur.IsDebit() {
			expected -= *cur.DebitPaise
		}

		if expected != cur.BalancePaise {
			mismatches++
		}
	}

	return mismatches
}
