package usecase

import (
	"context"
	"strings"
	"time"

	"bizdesk/internal/domain/aggregation"
	"bizdesk/internal/domain/entities"
	"bizdesk/internal/usecase/interfaces"

	"golang.org/x/sync/errgroup"
)

// Dashboard is the monthly summary plus the recent activity feed.
type Dashboard struct {
	Window         aggregation.Window
	Summary        aggregation.Summary
	RecentActivity []entities.Payment
}

type IDashboardUseCase interface {
	// Summary reports on month ("YYYY-MM"); an empty month means the current
	// one in the reporting timezone.
	Summary(ctx context.Context, month string) (Dashboard, error)
}

type DashboardUseCase struct {
	payments interfaces.IPaymentRepository
	quotes   interfaces.IQuoteRepository
	loc      *time.Location
	limit    int
	now      func() time.Time
}

var _ IDashboardUseCase = (*DashboardUseCase)(nil)

func NewDashboardUseCase(payments interfaces.IPaymentRepository, quotes interfaces.IQuoteRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{
		payments: payments,
		quotes:   quotes,
		loc:      loc,
		limit:    aggregation.DefaultActivityLimit,
		now:      time.Now,
	}
}

func (u *DashboardUseCase) Summary(ctx context.Context, month string) (Dashboard, error) {
	window := aggregation.MonthWindow(u.now(), u.loc)
	if month = strings.TrimSpace(month); month != "" {
		w, err := aggregation.ParseMonth(month, u.loc)
		if err != nil {
			return Dashboard{}, err
		}
		window = w
	}

	var (
		payments []entities.Payment
		quotes   []entities.Quote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = u.payments.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = u.quotes.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	summary, err := aggregation.MonthlySummary(payments, quotes, window)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Window:         window,
		Summary:        summary,
		RecentActivity: aggregation.RecentActivity(payments, u.limit),
	}, nil
}
