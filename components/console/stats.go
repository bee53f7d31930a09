package console

import (
	"context"
	"log/slog"
	"math"
	"sync"
)

// Percent returns round(part/whole*100), or 0 when whole is not positive.
func Percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// DerivedStats are the values computed from the backend summaries.
type DerivedStats struct {
	CheckinRate        int     `json:"checkinRate"`
	CancellationRate   int     `json:"cancellationRate"`
	AverageTicketPrice float64 `json:"averageTicketPrice"`
}

// Derive computes the secondary dashboard values.
func Derive(reservations ReservationSummary, sales SalesSummary) DerivedStats {
	out := DerivedStats{
		CheckinRate:      Percent(reservations.CheckedIn, reservations.TotalReservations),
		CancellationRate: Percent(reservations.Cancelled, reservations.TotalReservations),
	}
	if sales.TicketsSold > 0 {
		out.AverageTicketPrice = math.Round(sales.TotalSales/float64(sales.TicketsSold)*100) / 100
	}
	return out
}

// DashboardStats is the loaded state of a dashboard.
type DashboardStats struct {
	Scope              StatsScope         `json:"scope"`
	Reservations       ReservationSummary `json:"reservations"`
	Sales              SalesSummary       `json:"sales"`
	Derived            DerivedStats       `json:"derived"`
	ReservationsFailed bool               `json:"reservationsFailed"`
	SalesFailed        bool               `json:"salesFailed"`
}

// DashboardView loads the summary aggregates for one scope.
type DashboardView struct {
	scope     StatsScope
	repo      StatsRepository
	logger    *slog.Logger
	notifier  Notifier
	telemetry Telemetry
}

// NewDashboardView builds a dashboard view for scope.
func NewDashboardView(scope StatsScope, repo StatsRepository, opts ListOptions) *DashboardView {
	return &DashboardView{
		scope:     scope,
		repo:      repo,
		logger:    normalizeLogger(opts.Logger),
		notifier:  normalizeNotifier(opts.Notifier),
		telemetry: normalizeTelemetry(opts.Telemetry),
	}
}

// Load fetches both summaries concurrently. A failed fetch is logged, raises
// one error toast and leaves zero values; the other fetch is unaffected.
func (d *DashboardView) Load(ctx context.Context) DashboardStats {
	stats := DashboardStats{Scope: d.scope}
	if d.repo == nil {
		return stats
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, err := d.repo.FetchReservationSummary(ctx, d.scope)
		if err != nil {
			d.fail(ctx, "reservations", err, "Could not load reservation statistics.")
			stats.ReservationsFailed = true
			return
		}
		stats.Reservations = summary
	}()
	go func() {
		defer wg.Done()
		summary, err := d.repo.FetchSalesSummary(ctx, d.scope)
		if err != nil {
			d.fail(ctx, "sales", err, "Could not load sales statistics.")
			stats.SalesFailed = true
			return
		}
		stats.Sales = summary
	}()
	wg.Wait()

	stats.Derived = Derive(stats.Reservations, stats.Sales)
	d.telemetry.Record(ctx, "console.dashboard.load", map[string]any{
		"scope":               string(d.scope),
		"reservations_failed": stats.ReservationsFailed,
		"sales_failed":        stats.SalesFailed,
	})
	return stats
}

func (d *DashboardView) fail(ctx context.Context, summary string, err error, message string) {
	d.logger.ErrorContext(ctx, "dashboard summary fetch failed",
		"scope", string(d.scope),
		"summary", summary,
		"error", err,
	)
	d.notifier.Notify(ctx, ToastError, failureMessage(err, message))
}
