package ledger

import (
	"sort"
	"time"

	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
)

// Uncategorized labels payments whose category is unknown.
const Uncategorized = "Sin categoría"

var hundred = decimal.NewFromInt(100)

// Breakdown sums amount+fee of the payments in history by category label and
// computes each label's share of the period total. from and to are inclusive
// calendar days; nil leaves that side of the window open.
func Breakdown(history []models.TransferDetail, from, to *time.Time) models.Breakdown {
	out := models.Breakdown{From: from, To: to, Total: decimal.Zero, Categories: []models.CategoryTotal{}}

	var end time.Time
	if to != nil {
		end = startOfDay(*to).AddDate(0, 0, 1)
	}

	index := map[string]int{}
	for _, t := range history {
		if t.Kind != models.KindPayment {
			continue
		}
		if from != nil && t.Date.Before(startOfDay(*from)) {
			continue
		}
		if to != nil && !t.Date.Before(end) {
			continue
		}

		label := Uncategorized
		if t.Category != nil {
			label = *t.Category
		}
		spent := t.Amount.Add(t.Fee)

		i, ok := index[label]
		if !ok {
			i = len(out.Categories)
			index[label] = i
			out.Categories = append(out.Categories, models.CategoryTotal{Category: label, Total: decimal.Zero})
		}
		out.Categories[i].Total = out.Categories[i].Total.Add(spent)
		out.Categories[i].Count++
		out.Total = out.Total.Add(spent)
	}

	for i := range out.Categories {
		if out.Total.IsZero() {
			out.Categories[i].Percentage = decimal.Zero
			continue
		}
		out.Categories[i].Percentage = out.Categories[i].Total.Mul(hundred).Div(out.Total).Round(2)
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Category < b.Category
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
