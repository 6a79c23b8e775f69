// Package aggregation computes the monthly financial summary and the recent
// activity feed. Every function here is pure.
package aggregation

import (
	"fmt"
	"sort"

	"bizdesk/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// DefaultActivityLimit is the feed size used when the caller passes none.
const DefaultActivityLimit = 5

// Summary is the month's money at a glance.
type Summary struct {
	Received      decimal.Decimal `json:"received"`
	Pending       decimal.Decimal `json:"pending"`
	LostThisMonth decimal.Decimal `json:"lost_this_month"`

	ReceivedCount int `json:"received_count"`
	PendingCount  int `json:"pending_count"`
	LostCount     int `json:"lost_count"`
}

// MonthlySummary sums payments and quotes created inside w.
//
// Rows must carry statuses from the closed sets; anything else is reported
// as ErrUnknownStatus instead of being counted as zero.
func MonthlySummary(payments []entities.Payment, quotes []entities.Quote, w Window) (Summary, error) {
	var received, pending, lost Accumulator

	for _, p := range payments {
		if !p.Status.Valid() {
			return Summary{}, fmt.Errorf("%w: payment %s has status %q", entities.ErrUnknownStatus, p.ID, p.Status)
		}
		if !w.Contains(p.CreatedAt) {
			continue
		}
		switch p.Status {
		case entities.PaymentStatusPaid:
			received.Add(p.Value)
		case entities.PaymentStatusPending:
			pending.Add(p.Value)
		}
	}

	for _, q := range quotes {
		if !q.Status.Valid() {
			return Summary{}, fmt.Errorf("%w: quote %s has status %q", entities.ErrUnknownStatus, q.ID, q.Status)
		}
		if q.Status == entities.QuoteStatusLost && w.Contains(q.CreatedAt) {
			lost.Add(q.Value)
		}
	}

	return Summary{
		Received:      received.Total(),
		Pending:       pending.Total(),
		LostThisMonth: lost.Total(),
		ReceivedCount: received.Count(),
		PendingCount:  pending.Count(),
		LostCount:     lost.Count(),
	}, nil
}

// RecentActivity returns the newest limit payments across all time, newest
// first, ties broken by id. limit <= 0 means DefaultActivityLimit.
func RecentActivity(payments []entities.Payment, limit int) []entities.Payment {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	sorted := make([]entities.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
