package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatsRepo struct {
	reservations    ReservationSummary
	sales           SalesSummary
	reservationsErr error
	salesErr        error
}

func (s stubStatsRepo) FetchReservationSummary(context.Context, StatsScope) (ReservationSummary, error) {
	return s.reservations, s.reservationsErr
}

func (s stubStatsRepo) FetchSalesSummary(context.Context, StatsScope) (SalesSummary, error) {
	return s.sales, s.salesErr
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(7, 7))
}

func TestDerive(t *testing.T) {
	derived := Derive(
		ReservationSummary{TotalReservations: 200, CheckedIn: 150, Cancelled: 10},
		SalesSummary{TotalSales: 1000, TicketsSold: 3},
	)
	assert.Equal(t, 75, derived.CheckinRate)
	assert.Equal(t, 5, derived.CancellationRate)
	assert.InDelta(t, 333.33, derived.AverageTicketPrice, 0.001)

	assert.Equal(t, DerivedStats{}, Derive(ReservationSummary{}, SalesSummary{}))
}

func TestDashboardViewIsolatesFailedFetch(t *testing.T) {
	toasts := &toastRecorder{}
	repo := stubStatsRepo{
		reservations: ReservationSummary{TotalReservations: 10, CheckedIn: 4},
		salesErr:     errors.New("timeout"),
	}
	stats := NewDashboardView(ScopeHost, repo, ListOptions{Notifier: toasts}).Load(context.Background())

	assert.Equal(t, ScopeHost, stats.Scope)
	assert.False(t, stats.ReservationsFailed)
	assert.True(t, stats.SalesFailed)
	assert.Equal(t, int64(10), stats.Reservations.TotalReservations)
	assert.Equal(t, 40, stats.Derived.CheckinRate)
	assert.Zero(t, stats.Sales.TotalSales)
	require.Len(t, toasts.msgs, 1)
	assert.Equal(t, "Could not load sales statistics.", toasts.msgs[0])
}
