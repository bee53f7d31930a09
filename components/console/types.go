package console

import "context"

// Creator is a platform content creator managed by admins.
type Creator struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Description string   `json:"description,omitempty"`
	ProfileURL  string   `json:"profileImageUrl,omitempty"`
	SocialLinks []string `json:"socialLinks,omitempty"`
	Active      bool     `json:"active"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// Banner is a promotional banner shown on the public site.
type Banner struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title" validate:"required"`
	ImageURL  string `json:"imageUrl" validate:"required"`
	LinkURL   string `json:"linkUrl,omitempty" validate:"omitempty,url"`
	Position  int    `json:"position" validate:"gte=0"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Active    bool   `json:"active"`
}

// Settings holds the site-wide configuration editable by admins.
type Settings struct {
	SiteName         string `json:"siteName" validate:"required"`
	SupportEmail     string `json:"supportEmail" validate:"required,email"`
	MaintenanceMode  bool   `json:"maintenanceMode"`
	ReservationLimit int    `json:"reservationLimit" validate:"gte=0"`
	Notice           string `json:"notice,omitempty"`
}

// Reservation is a ticket reservation as listed by the backend.
type Reservation struct {
	ID          string  `json:"id"`
	EventTitle  string  `json:"eventTitle"`
	UserEmail   string  `json:"userEmail"`
	Quantity    int     `json:"quantity"`
	TotalPrice  float64 `json:"totalPrice"`
	Status      string  `json:"status"`
	CheckedIn   bool    `json:"checkedIn"`
	ReservedAt  string  `json:"reservedAt"`
	PaymentType string  `json:"paymentType,omitempty"`
}

// AccessLog records a sign-in or page access.
type AccessLog struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	CreatedAt string `json:"createdAt"`
}

// ChangeLog records an administrative mutation.
type ChangeLog struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Action     string `json:"action"`
	Summary    string `json:"summary"`
	CreatedAt  string `json:"createdAt"`
}

// BoothApplication is a host's request to run a booth at an event.
type BoothApplication struct {
	ID          string `json:"id"`
	BoothName   string `json:"boothName"`
	Applicant   string `json:"applicantEmail"`
	EventTitle  string `json:"eventTitle"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
}

// BannerApplication is a request to place a paid banner.
type BannerApplication struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Applicant   string `json:"applicantEmail"`
	SlotDate    string `json:"slotDate"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
}

// Event is a ticketed event owned by a host.
type Event struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Venue     string `json:"venue"`
	StartsAt  string `json:"startsAt"`
	Status    string `json:"status"`
	Capacity  int    `json:"capacity"`
	TicketsIn int    `json:"ticketsSold"`
}

// ReservationSummary aggregates reservation counters.
type ReservationSummary struct {
	TotalReservations int64 `json:"totalReservations"`
	CheckedIn         int64 `json:"checkedIn"`
	Cancelled         int64 `json:"cancelled"`
	TotalEvents       int64 `json:"totalEvents"`
}

// SalesPoint is one day of sales.
type SalesPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// SalesSummary aggregates ticket sales.
type SalesSummary struct {
	TotalSales  float64      `json:"totalSales"`
	TicketsSold int64        `json:"ticketsSold"`
	Daily       []SalesPoint `json:"daily"`
}

// StatsScope selects which audience aggregates are computed for.
type StatsScope string

const (
	ScopeAdmin StatsScope = "admin"
	ScopeHost  StatsScope = "host"
)

// StatsRepository loads dashboard aggregates from the backend.
type StatsRepository interface {
	FetchReservationSummary(ctx context.Context, scope StatsScope) (ReservationSummary, error)
	FetchSalesSummary(ctx context.Context, scope StatsScope) (SalesSummary, error)
}

// EntityStore persists one editable entity type through the backend.
type EntityStore[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
}

// SettingsStore reads and writes the singleton settings document.
type SettingsStore interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) (Settings, error)
}

type unauthorizedError interface {
	Unauthorized() bool
}
