package backend

import (
	"fmt"
	"time"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// DemoData returns deterministic fixtures anchored at now.
func DemoData(now time.Time) MockData {
	day := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format("2006-01-02")
	}
	stamp := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format(time.RFC3339)
	}

	data := MockData{
		Settings: console.Settings{
			SiteName:         "Ticketing",
			SupportEmail:     "support@example.com",
			ReservationLimit: 4,
		},
		ReservationSummary: console.ReservationSummary{
			TotalReservations: 240,
			CheckedIn:         180,
			Cancelled:         12,
			TotalEvents:       6,
		},
		ManagedBoothID: "booth-1",
	}

	statuses := []string{"RESERVED", "CHECKED_IN", "CANCELLED"}
	events := []string{"Spring Live", "Jazz Night", "Indie Fair"}
	for i := range 24 {
		data.Reservations = append(data.Reservations, console.Reservation{
			ID:          fmt.Sprintf("res-%02d", i+1),
			EventTitle:  events[i%len(events)],
			UserEmail:   fmt.Sprintf("guest%02d@example.com", i+1),
			Quantity:    1 + i%3,
			TotalPrice:  float64(1+i%3) * 25,
			Status:      statuses[i%len(statuses)],
			CheckedIn:   i%2 == 0,
			ReservedAt:  stamp(i),
			PaymentType: "CARD",
		})
		data.AccessLogs = append(data.AccessLogs, console.AccessLog{
			ID:        fmt.Sprintf("log-%02d", i+1),
			Email:     fmt.Sprintf("admin%d@example.com", i%3),
			IPAddress: fmt.Sprintf("10.0.0.%d", i+1),
			UserAgent: "Mozilla/5.0",
			Action:    "LOGIN",
			Success:   i%5 != 0,
			CreatedAt: stamp(i),
		})
	}
	for i := range 7 {
		amount := float64(100 + 35*i)
		data.Sales.Daily = append(data.Sales.Daily, console.SalesPoint{
			Date:   day(6 - i),
			Amount: amount,
			Count:  int64(4 + i),
		})
		data.Sales.TotalSales += amount
		data.Sales.TicketsSold += int64(4 + i)
	}
	data.ChangeLogs = []console.ChangeLog{
		{ID: "chg-1", Actor: "admin0@example.com", TargetType: "CREATOR", TargetID: "creator-1", Action: "UPDATE", Summary: "Updated profile", CreatedAt: stamp(1)},
		{ID: "chg-2", Actor: "admin1@example.com", TargetType: "BANNER", TargetID: "banner-1", Action: "CREATE", Summary: "Added banner", CreatedAt: stamp(2)},
	}
	data.BoothApplications = []console.BoothApplication{
		{ID: "booth-app-1", BoothName: "Vinyl Corner", Applicant: "host@example.com", EventTitle: "Indie Fair", Category: "MERCH", Status: "PENDING", SubmittedAt: stamp(3)},
		{ID: "booth-app-2", BoothName: "Coffee Cart", Applicant: "cafe@example.com", EventTitle: "Jazz Night", Category: "FOOD", Status: "APPROVED", SubmittedAt: stamp(5)},
	}
	data.BannerApplications = []console.BannerApplication{
		{ID: "banner-app-1", Title: "Summer promo", Applicant: "promo@example.com", SlotDate: day(-7), Status: "PENDING", SubmittedAt: stamp(2)},
	}
	data.Creators = []console.Creator{
		{ID: "creator-1", Name: "Mina Park", Email: "mina@example.com", Active: true, CreatedAt: stamp(30)},
		{ID: "creator-2", Name: "Leo Costa", Email: "leo@example.com", Active: false, CreatedAt: stamp(12)},
	}
	data.Banners = []console.Banner{
		{ID: "banner-1", Title: "Spring Live", ImageURL: "https://example.com/spring.png", Position: 0, Active: true},
	}
	data.Events = []console.Event{
		{ID: "event-1", Title: "Spring Live", Venue: "Main Hall", StartsAt: stamp(-10), Status: "OPEN", Capacity: 500, TicketsIn: 320},
		{ID: "event-2", Title: "Jazz Night", Venue: "Club Blue", StartsAt: stamp(-3), Status: "OPEN", Capacity: 120, TicketsIn: 118},
	}
	return data
}
