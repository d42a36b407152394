package payroll

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	BadgeDeficit = "DEFICIT"
	BadgeBalDue  = "BAL_DUE"
	BadgeCleared = "CLEARED"
	BadgePayable = "PAYABLE"
)

// splitAllowance divides total evenly across n crew members at two decimals.
// The last member absorbs the rounding remainder.
func splitAllowance(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	out := make([]decimal.Decimal, n)
	share := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	rest := total
	for i := 0; i < n-1; i++ {
		out[i] = share
		rest = rest.Sub(share)
	}
	out[n-1] = rest.Round(2)
	return out
}

// Badge classifies a crew member's balance for the period.
func Badge(net, paid decimal.Decimal) string {
	switch {
	case net.IsNegative():
		return BadgeDeficit
	case paid.GreaterThan(net):
		return BadgeBalDue
	case paid.Equal(net) && net.IsPositive():
		return BadgeCleared
	default:
		return BadgePayable
	}
}

// summarize folds line items, adjustments and payments into one row per
// person. Void records never count. Allowance is reported but is not part of
// net salary.
func summarize(people []Person, lines []LineItem, adjs []Adjustment, pays []Payment) []SummaryRow {
	rows := make(map[uuid.UUID]*SummaryRow)
	row := func(id uuid.UUID) *SummaryRow {
		r, ok := rows[id]
		if !ok {
			r = &SummaryRow{
				UserID:          id.String(),
				TotalBasePay:    decimal.Zero,
				TotalAllowance:  decimal.Zero,
				TotalBonus:      decimal.Zero,
				TotalDeductions: decimal.Zero,
				TotalPaid:       decimal.Zero,
			}
			rows[id] = r
		}
		return r
	}

	for _, l := range lines {
		r := row(l.CrewID)
		r.TotalBasePay = r.TotalBasePay.Add(l.BaseFee)
		r.TotalAllowance = r.TotalAllowance.Add(l.Allowance)
	}
	for _, a := range adjs {
		if a.Status == StatusVoid {
			continue
		}
		r := row(a.UserID)
		if a.Type == AdjustmentBonus {
			r.TotalBonus = r.TotalBonus.Add(a.Amount)
		} else {
			r.TotalDeductions = r.TotalDeductions.Add(a.Amount)
		}
	}
	for _, p := range pays {
		if p.Status == StatusVoid {
			continue
		}
		r := row(p.UserID)
		r.TotalPaid = r.TotalPaid.Add(p.Amount)
	}

	names := make(map[uuid.UUID]Person, len(people))
	for _, p := range people {
		names[p.ID] = p
	}

	out := make([]SummaryRow, 0, len(rows))
	for id, r := range rows {
		r.Name = names[id].Name
		r.Role = names[id].Role
		r.NetSalary = r.TotalBasePay.Add(r.TotalBonus).Sub(r.TotalDeductions)
		r.Status = Badge(r.NetSalary, r.TotalPaid)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// emptyRow is the summary of someone with nothing recorded in the period.
func emptyRow(p Person) SummaryRow {
	return SummaryRow{
		UserID:          p.ID.String(),
		Name:            p.Name,
		Role:            p.Role,
		TotalBasePay:    decimal.Zero,
		TotalAllowance:  decimal.Zero,
		TotalBonus:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalPaid:       decimal.Zero,
		NetSalary:       decimal.Zero,
		Status:          BadgePayable,
	}
}

func personIDs(lines []LineItem, adjs []Adjustment, pays []Payment) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, l := range lines {
		add(l.CrewID)
	}
	for _, a := range adjs {
		add(a.UserID)
	}
	for _, p := range pays {
		add(p.UserID)
	}
	return ids
}
