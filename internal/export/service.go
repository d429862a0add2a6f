// Package export renders a combined statement as CSV or XLSX for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/akhilmv/statementiq/internal/transaction"
)

var csvHeader = []string{"Date", "Description", "Debit", "Credit", "Balance", "Confidence", "Flagged"}

// Service writes statement exports.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// WriteCSV streams the statement's transactions as CSV rows.
func (s *Service) WriteCSV(w io.Writer, st *transaction.Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range st.Transactions {
		row := []string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			amountString(tx.DebitPaise),
			amountString(tx.CreditPaise),
			paiseString(tx.BalancePaise),
			strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
			strconv.FormatBool(tx.Flagged),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteXLSX renders the statement as a workbook with three sheets:
// Transactions, Analytics and Monthly.
func (s *Service) WriteXLSX(w io.Writer, st *transaction.Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	const txSheet = "Transactions"

	if err := f.SetSheetName("Sheet1", txSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	if err := writeTransactionsSheet(f, txSheet, st); err != nil {
		return err
	}

	summary := transaction.Summarize(st.Transactions)

	if err := writeAnalyticsSheet(f, st, summary); err != nil {
		return err
	}

	if err := writeMonthlySheet(f, summary.MonthlyTotals); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeTransactionsSheet(f *excelize.File, sheet string, st *transaction.Statement) error {
	if err := writeRow(f, sheet, 1, []any{"Date", "Description", "Debit", "Credit", "Balance", "Confidence", "Flagged"}); err != nil {
		return err
	}

	for i, tx := range st.Transactions {
		row := []any{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			amountCell(tx.DebitPaise),
			amountCell(tx.CreditPaise),
			transaction.PaiseToFloat(tx.BalancePaise),
			tx.Confidence,
			tx.Flagged,
		}

		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func writeAnalyticsSheet(f *excelize.File, st *transaction.Statement, summary transaction.Summary) error {
	const sheet = "Analytics"

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("adding sheet %s: %w", sheet, err)
	}

	rows := [][]any{
		{"Bank", string(st.Bank)},
		{"Source Files", st.FileName},
		{"Transactions", summary.RowCount},
		{"Total Credit", transaction.PaiseToFloat(st.Analytics.TotalCreditPaise)},
		{"Total Debit", transaction.PaiseToFloat(st.Analytics.TotalDebitPaise)},
		{"Net Cash Flow", transaction.PaiseToFloat(st.Analytics.NetCashFlowPaise)},
		{"Flagged Rows", st.Analytics.FlaggedCount},
		{"Average Confidence", summary.Quality.AvgConfidence},
		{"Balance Mismatches", summary.Quality.BalanceMismatches},
	}

	for i, row := range rows {
		if err := writeRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}

	return nil
}

func writeMonthlySheet(f *excelize.File, months []transaction.MonthlyTotal) error {
	const sheet = "Monthly"

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("adding sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, []any{"Month", "Total Credit", "Total Debit"}); err != nil {
		return err
	}

	for i, m := range months {
		row := []any{
			m.Month,
			transaction.PaiseToFloat(m.TotalCreditPaise),
			transaction.PaiseToFloat(m.TotalDebitPaise),
		}

		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}

		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting cell %s!%s: %w", sheet, cell, err)
		}
	}

	return nil
}

// amountString renders an optional amount, empty when absent.
func amountString(paise *int64) string {
	if paise == nil {
		return ""
	}

	return paiseString(*paise)
}

func paiseString(paise int64) string {
	return strconv.FormatFloat(transaction.PaiseToFloat(paise), 'f', 2, 64)
}

// amountCell renders an optional amount as a numeric cell, empty when absent.
func amountCell(paise *int64) any {
	if paise == nil {
		return ""
	}

	return transaction.PaiseToFloat(*paise)
}
