package engine

import (
	"sort"

	"findataops/internal/domain"
)

// BuildMonthlyCashflow aggregates transactions into one cashflow row per
// calendar month, sorted by month ASC. Income is the sum of positive
// amounts, expenses the sum of magnitudes of negative amounts. The savings
// rate is net over income, 0 when the month has no income.
func BuildMonthlyCashflow(txns []*domain.Transaction) []*domain.MonthlyCashflow {
	byMonth := make(map[string]*domain.MonthlyCashflow)
	for _, txn := range txns {
		month := txn.Month()
		row, ok := byMonth[month]
		if !ok {
			row = &domain.MonthlyCashflow{Month: month}
			byMonth[month] = row
		}
		if txn.IsExpense() {
			row.Expenses += txn.AbsAmount()
		} else {
			row.Income += txn.Amount
		}
		row.TransactionCount++
	}

	rows := make([]*domain.MonthlyCashflow, 0, len(byMonth))
	for _, row := range byMonth {
		row.Net = row.Income - row.Expenses
		if row.Income > 0 {
			row.SavingsRate = row.Net / row.Income
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// BuildCategoryMonthly aggregates expense transactions into one row per
// (month, category), sorted by month then category. Transactions without a
// category are skipped; income never contributes.
func BuildCategoryMonthly(txns []*domain.Transaction) []*domain.CategoryMonthly {
	type key struct {
		month    string
		category string
	}
	byKey := make(map[key]*domain.CategoryMonthly)
	for _, txn := range txns {
		if !txn.IsExpense() || txn.Category == "" {
			continue
		}
		k := key{txn.Month(), txn.Category}
		row, ok := byKey[k]
		if !ok {
			row = &domain.CategoryMonthly{Month: k.month, Category: k.category}
			byKey[k] = row
		}
		row.Expenses += txn.AbsAmount()
		row.TransactionCount++
	}

	rows := make([]*domain.CategoryMonthly, 0, len(byKey))
	for _, row := range byKey {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
