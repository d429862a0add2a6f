// Package reconcile matches a credit against a set of later debits: a
// bounded subset-sum search over debit amounts, in integer paise, aiming for
// the subset whose total comes closest to the target without exceeding it.
package reconcile

import (
	"sort"
	"time"

	"github.com/akhilmv/statementiq/internal/transaction"
)

// VisitBudget caps the number of search-tree nodes examined per run. The
// search returns the best subset found within the budget, which keeps large
// statements responsive at the cost of guaranteed optimality.
const VisitBudget = 20000

// Result is the outcome of one reconciliation run.
type Result struct {
	// MatchedDebits holds the chosen debits, date ascending.
	MatchedDebits []transaction.Transaction
	// TotalMatchedPaise is the sum of the chosen debit amounts.
	TotalMatchedPaise int64
	// DifferencePaise is target minus total matched.
	DifferencePaise int64
	// Accuracy is total matched as a percentage of the target, 0 for a
	// zero target.
	Accuracy float64
}

// Match searches txs for the debit subset best approximating targetPaise.
// Eligible debits have a positive amount no larger than the target and fall
// on or after anchorDate's calendar day. anchorDate is the date of the credit
// being reconciled and stays fixed across recomputations with edited targets.
func Match(txs []transaction.Transaction, anchorDate time.Time, targetPaise int64) Result {
	items := eligibleDebits(txs, anchorDate, targetPaise)

	sort.SliceStable(items, func(i, j int) bool {
		return *items[i].DebitPaise > *items[j].DebitPaise
	})

	chosen, total := search(items, targetPaise)

	sort.SliceStable(chosen, func(i, j int) bool {
		return chosen[i].Date.Before(chosen[j].Date)
	})

	res := Result{
		MatchedDebits:     chosen,
		TotalMatchedPaise: total,
		DifferencePaise:   targetPaise - total,
	}

	if targetPaise > 0 {
		res.Accuracy = float64(total) / float64(targetPaise) * 100
	}

	return res
}

// MatchCredit runs Match anchored on a selected credit transaction, with the
// credit's own amount as the target.
func MatchCredit(txs []transaction.Transaction, credit transaction.Transaction) Result {
	var target int64
	if credit.CreditPaise != nil {
		target = *credit.CreditPaise
	}

	return Match(txs, credit.Date, target)
}

func eligibleDebits(txs []transaction.Transaction, anchorDate time.Time, targetPaise int64) []transaction.Transaction {
	anchor := transaction.DayOf(anchorDate)

	var items []transaction.Transaction

	for _, tx := range txs {
		if tx.DebitPaise == nil || *tx.DebitPaise <= 0 {
			continue
		}

		if *tx.DebitPaise > targetPaise {
			continue
		}

		if transaction.DayOf(tx.Date).Before(anchor) {
			continue
		}

		items = append(items, tx)
	}

	return items
}

// frame is one node of the include/exclude decision tree.
type frame struct {
	index  int
	sum    int64
	chosen []int
}

// search walks the decision tree over items with an explicit stack, visiting
// at most VisitBudget nodes. Larger sums win; equal sums are broken by the
// subset's average confidence. Items must be sorted by amount descending so
// that promising branches are reached early.
func search(items []transaction.Transaction, targetPaise int64) ([]transaction.Transaction, int64) {
	var (
		bestChosen []int
		bestSum    int64
		bestAvg    float64
		visits     int
	)

	stack := []frame{{index: 0}}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visits++
		if visits > VisitBudget {
			break
		}

		if node.sum > bestSum || (node.sum == bestSum && avgConfidence(items, node.chosen) > bestAvg) {
			bestChosen = node.chosen
			bestSum = node.sum
			bestAvg = avgConfidence(items, node.chosen)
		}

		// An exact hit cannot be improved along this branch.
		if node.sum == targetPaise && targetPaise > 0 {
			continue
		}

		if node.index >= len(items) {
			continue
		}

		stack = append(stack, frame{index: node.index + 1, sum: node.sum, chosen: node.chosen})

		// The include branch is only feasible while the sum stays within
		// the target.
		if next := node.sum + *items[node.index].DebitPaise; next <= targetPaise {
			withItem := make([]int, len(node.chosen)+1)
			copy(withItem, node.chosen)
			withItem[len(node.chosen)] = node.index

			stack = append(stack, frame{index: node.index + 1, sum: next, chosen: withItem})
		}
	}

	chosen := make([]transaction.Transaction, len(bestChosen))
	for i, idx := range bestChosen {
		chosen[i] = items[idx]
	}

	return chosen, bestSum
}

func avgConfidence(items []transaction.Transaction, chosen []int) float64 {
	if len(chosen) == 0 {
		return 0
	}

	var sum float64
	for _, idx := range chosen {
		sum += items[idx].Confidence
	}

	return sum / float64(len(chosen))
}
