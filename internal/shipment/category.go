package shipment

import (
	"strings"
	"time"

	"go-fleetpay/internal/phase"
	"go-fleetpay/internal/shared/civil"
)

type Category string

const (
	CategoryActive    Category = "active"
	CategoryUpcoming  Category = "upcoming"
	CategoryDelayed   Category = "delayed"
	CategoryCompleted Category = "completed"
)

func Categories() []Category {
	return []Category{CategoryActive, CategoryUpcoming, CategoryDelayed, CategoryCompleted}
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Classify puts a shipment in exactly one category as of today. Rules are
// evaluated in order: completed, delayed, upcoming, then active.
func Classify(s Shipment, today time.Time) Category {
	today = civil.Date(today)
	pending := s.CurrentStatus == phase.Pending

	if s.CurrentStatus.IsTerminal() {
		return CategoryCompleted
	}
	if s.DeliveryDate != nil && civil.Date(*s.DeliveryDate).Before(today) {
		return CategoryDelayed
	}
	if pending && s.LoadingDate != nil && civil.Date(*s.LoadingDate).Before(today) {
		return CategoryDelayed
	}
	if pending && s.LoadingDate != nil && civil.Date(*s.LoadingDate).After(today) {
		return CategoryUpcoming
	}
	return CategoryActive
}
