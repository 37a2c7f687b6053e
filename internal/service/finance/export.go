package finance_service

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"gym-panel/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Сводка"
	sheetIncome  = "Доходы"
	sheetExpense = "Расходы"
	sheetPT      = "Выплаты PT"
)

func (s *financeService) Export(ctx context.Context, from, to time.Time, w io.Writer) error {
	sum, err := s.Summary(ctx, from, to)
	if err != nil {
		return err
	}
	return WriteWorkbook(sum, w)
}

// WriteWorkbook пишет сводку в xlsx: лист итогов и по листу на каждую разбивку.
func WriteWorkbook(sum *models.FinanceSummary, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	summaryRows := [][]any{
		{"Период", fmt.Sprintf("%s - %s", sum.From.Format("02.01.2006"), sum.To.AddDate(0, 0, -1).Format("02.01.2006"))},
		{"Доход", sum.Income},
		{"Платежей", sum.PaymentsCount},
		{"Возвраты", sum.Refunds},
		{"Расходы", sum.Expenses},
		{"Оклады", sum.Salaries},
		{"Выплаты PT", sum.PTPayouts},
		{"Чистая прибыль", sum.Net},
		{"Возвраты, % дохода", round2(sum.RefundPercent)},
		{"Расходы, % дохода", round2(sum.ExpensePercent)},
		{"Рентабельность, %", round2(sum.ProfitMargin)},
	}
	if err := writeTable(f, sheetSummary, []any{"Показатель", "Значение"}, summaryRows, bold); err != nil {
		return err
	}

	if err := writeShares(f, sheetIncome, "Способ оплаты", sum.IncomeByMethod, bold); err != nil {
		return err
	}
	if err := writeShares(f, sheetExpense, "Категория", sum.ExpensesByCat, bold); err != nil {
		return err
	}

	ptRows := make([][]any, 0, len(sum.CoachPayouts))
	for _, p := range sum.CoachPayouts {
		ptRows = append(ptRows, []any{p.CoachName, p.Sessions, p.Rate, p.Amount})
	}
	if _, err := f.NewSheet(sheetPT); err != nil {
		return err
	}
	if err := writeTable(f, sheetPT, []any{"Тренер", "Занятий", "Ставка", "К выплате"}, ptRows, bold); err != nil {
		return err
	}

	return f.Write(w)
}

func writeShares(f *excelize.File, sheet, label string, shares []models.Share, bold int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(shares))
	for _, sh := range shares {
		rows = append(rows, []any{sh.Label, sh.Amount, round2(sh.Percent)})
	}
	return writeTable(f, sheet, []any{label, "Сумма", "%"}, rows, bold)
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any, bold int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
