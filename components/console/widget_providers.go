package console

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Stat card metric codes.
const (
	MetricTotalReservations  = "total_reservations"
	MetricCheckedIn          = "checked_in"
	MetricCancelled          = "cancelled"
	MetricTotalEvents        = "total_events"
	MetricTotalSales         = "total_sales"
	MetricTicketsSold        = "tickets_sold"
	MetricCheckinRate        = "checkin_rate"
	MetricCancellationRate   = "cancellation_rate"
	MetricAverageTicketPrice = "average_ticket_price"
)

func statMetricCodes() []string {
	return []string{
		MetricTotalReservations,
		MetricCheckedIn,
		MetricCancelled,
		MetricTotalEvents,
		MetricTotalSales,
		MetricTicketsSold,
		MetricCheckinRate,
		MetricCancellationRate,
		MetricAverageTicketPrice,
	}
}

type statCardsProvider struct{}

func (statCardsProvider) Fetch(_ context.Context, meta WidgetContext) (WidgetData, error) {
	metrics := stringSliceValue(meta.Instance.Configuration["metrics"])
	if len(metrics) == 0 {
		metrics = statMetricCodes()
	}
	cards := make([]map[string]any, 0, len(metrics))
	for _, code := range metrics {
		label, value, ok := statCard(code, meta.Stats)
		if !ok {
			return nil, fmt.Errorf("console: unknown stat metric %q", code)
		}
		cards = append(cards, map[string]any{"code": code, "label": label, "value": value})
	}
	return WidgetData{"cards": cards}, nil
}

func statCard(code string, stats DashboardStats) (label, value string, ok bool) {
	r, s, d := stats.Reservations, stats.Sales, stats.Derived
	switch code {
	case MetricTotalReservations:
		return "Reservations", strconv.FormatInt(r.TotalReservations, 10), true
	case MetricCheckedIn:
		return "Checked in", strconv.FormatInt(r.CheckedIn, 10), true
	case MetricCancelled:
		return "Cancelled", strconv.FormatInt(r.Cancelled, 10), true
	case MetricTotalEvents:
		return "Events", strconv.FormatInt(r.TotalEvents, 10), true
	case MetricTotalSales:
		return "Sales", money(s.TotalSales), true
	case MetricTicketsSold:
		return "Tickets sold", strconv.FormatInt(s.TicketsSold, 10), true
	case MetricCheckinRate:
		return "Check-in rate", strconv.Itoa(d.CheckinRate) + "%", true
	case MetricCancellationRate:
		return "Cancellation rate", strconv.Itoa(d.CancellationRate) + "%", true
	case MetricAverageTicketPrice:
		return "Average ticket", money(d.AverageTicketPrice), true
	}
	return "", "", false
}

type checkinGaugeProvider struct {
	charts *ChartRenderer
}

func (p checkinGaugeProvider) Fetch(_ context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	title := stringValue(cfg["title"], "Check-in rate")
	rate := meta.Stats.Derived.CheckinRate
	html, err := p.charts.Render(ChartSpec{
		Type:  "gauge",
		Title: title,
		Theme: stringValue(cfg["theme"], ""),
		Series: []ChartSeries{{
			Name:   "Check-in",
			Points: []ChartPoint{{Label: "checked in", Value: float64(rate)}},
		}},
	})
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"title":      title,
		"rate":       rate,
		"chart_html": html,
	}, nil
}

type salesChartProvider struct {
	charts *ChartRenderer
}

func (p salesChartProvider) Fetch(_ context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	title := stringValue(cfg["title"], "Daily sales")
	metric := stringValue(cfg["metric"], "amount")
	daily := meta.Stats.Sales.Daily
	data := WidgetData{"title": title, "metric": metric}
	if len(daily) == 0 {
		data["empty"] = true
		return data, nil
	}
	axis := make([]string, len(daily))
	points := make([]ChartPoint, len(daily))
	for i, day := range daily {
		axis[i] = day.Date
		value := day.Amount
		if metric == "count" {
			value = float64(day.Count)
		}
		points[i] = ChartPoint{Label: day.Date, Value: math.Round(value*100) / 100}
	}
	name := "Sales"
	if metric == "count" {
		name = "Tickets"
	}
	html, err := p.charts.Render(ChartSpec{
		Type:   stringValue(cfg["chart_type"], "line"),
		Title:  title,
		Theme:  stringValue(cfg["theme"], ""),
		XAxis:  axis,
		Series: []ChartSeries{{Name: name, Points: points}},
	})
	if err != nil {
		return nil, err
	}
	data["chart_html"] = html
	return data, nil
}

// NewRecentActivityProvider lists the latest access log entries.
func NewRecentActivityProvider(logs PageFetcher[AccessLog]) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		limit := intValue(meta.Instance.Configuration["limit"], 10)
		page, err := logs.FetchPage(ctx, PageQuery{Page: 0, Size: limit})
		if err != nil {
			return nil, fmt.Errorf("console: recent activity: %w", err)
		}
		items := make([]map[string]any, 0, min(limit, len(page.Content)))
		for i, entry := range page.Content {
			if i >= limit {
				break
			}
			items = append(items, map[string]any{
				"user":    entry.Email,
				"action":  entry.Action,
				"success": entry.Success,
				"at":      entry.CreatedAt,
			})
		}
		return WidgetData{"items": items}, nil
	})
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSliceValue(v any) []string {
	switch value := v.(type) {
	case []string:
		return value
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intValue(v any, fallback int) int {
	switch value := v.(type) {
	case int:
		if value > 0 {
			return value
		}
	case int64:
		if value > 0 {
			return int(value)
		}
	case float64:
		if value > 0 {
			return int(value)
		}
	}
	return fallback
}
