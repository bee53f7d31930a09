package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Backend endpoints consumed by the console lists and editors.
const (
	EndpointAccessLogs            = "/api/admin/access-logs"
	EndpointChangeLogs            = "/api/admin/change-logs"
	EndpointReservations          = "/api/admin/reservations"
	EndpointBoothApplications     = "/api/admin/booth-applications"
	EndpointBannerApplications    = "/api/admin/banner-applications"
	EndpointCreators              = "/api/admin/creators"
	EndpointBanners               = "/api/admin/banners"
	EndpointSettings              = "/api/admin/settings"
	EndpointHostReservations      = "/api/host/reservations"
	EndpointHostEvents            = "/api/host/events"
	EndpointHostBoothApplications = "/api/host/booth-applications"
	EndpointHostManagedBooth      = "/api/host/booths/me"
)

// List codes.
const (
	ListAccessLogs            = "access-logs"
	ListChangeLogs            = "change-logs"
	ListReservations          = "reservations"
	ListBoothApplications     = "booth-applications"
	ListBannerApplications    = "banner-applications"
	ListCreators              = "creators"
	ListBanners               = "banners"
	ListHostReservations      = "host-reservations"
	ListHostEvents            = "host-events"
	ListHostBoothApplications = "host-booth-applications"
)

const anyValue = "ALL"

var errUnknownList = errors.New("console: unknown list")

// ListEntry registers a list with the catalog. New builds a fresh view per request.
type ListEntry struct {
	Code     string
	Title    string
	Path     string
	Shell    string
	Endpoint string
	Gate     PermissionGate
	// QueryKeys lists the request parameters the list reads: its filter
	// keys plus page.
	QueryKeys []string
	New       func(ListOptions) Lister
}

// ListCatalog indexes the lists the console can render.
type ListCatalog struct {
	entries map[string]ListEntry
	byPath  map[string]string
}

// NewListCatalog creates an empty catalog.
func NewListCatalog() *ListCatalog {
	return &ListCatalog{
		entries: map[string]ListEntry{},
		byPath:  map[string]string{},
	}
}

// Register adds an entry; codes and paths must be unique.
func (c *ListCatalog) Register(entry ListEntry) error {
	if entry.Code == "" {
		return fmt.Errorf("console: list code is required")
	}
	if entry.New == nil {
		return fmt.Errorf("console: list %s has no constructor", entry.Code)
	}
	if _, exists := c.entries[entry.Code]; exists {
		return fmt.Errorf("console: list %s already registered", entry.Code)
	}
	if entry.Path != "" {
		if other, exists := c.byPath[entry.Path]; exists {
			return fmt.Errorf("console: list %s path %s already used by %s", entry.Code, entry.Path, other)
		}
		c.byPath[entry.Path] = entry.Code
	}
	c.entries[entry.Code] = entry
	return nil
}

// Lookup returns the entry for code.
func (c *ListCatalog) Lookup(code string) (ListEntry, error) {
	entry, ok := c.entries[code]
	if !ok {
		return ListEntry{}, fmt.Errorf("%w: %s", errUnknownList, code)
	}
	return entry, nil
}

// LookupPath returns the entry mounted at path.
func (c *ListCatalog) LookupPath(path string) (ListEntry, error) {
	code, ok := c.byPath[path]
	if !ok {
		return ListEntry{}, fmt.Errorf("%w: %s", errUnknownList, path)
	}
	return c.entries[code], nil
}

// Entries returns all entries sorted by code.
func (c *ListCatalog) Entries() []ListEntry {
	out := make([]ListEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// RegisterList adds a typed list definition backed by fetcher.
func RegisterList[T any](c *ListCatalog, def ListDefinition[T], fetcher PageFetcher[T]) error {
	if fetcher == nil {
		return fmt.Errorf("console: list %s has no fetcher", def.Code)
	}
	return c.Register(ListEntry{
		Code:      def.Code,
		Title:     def.Title,
		Path:      def.Path,
		Shell:     def.Shell,
		Endpoint:  def.Endpoint,
		Gate:      def.Gate,
		QueryKeys: queryKeys(def.Filters),
		New: func(opts ListOptions) Lister {
			return NewListView(def, fetcher, opts)
		},
	})
}

// ListSources holds the page fetchers behind the built-in lists.
type ListSources struct {
	AccessLogs            PageFetcher[AccessLog]
	ChangeLogs            PageFetcher[ChangeLog]
	Reservations          PageFetcher[Reservation]
	BoothApplications     PageFetcher[BoothApplication]
	BannerApplications    PageFetcher[BannerApplication]
	Creators              PageFetcher[Creator]
	Banners               PageFetcher[Banner]
	HostReservations      PageFetcher[Reservation]
	HostEvents            PageFetcher[Event]
	HostBoothApplications PageFetcher[BoothApplication]
}

// DefaultListCatalog registers every built-in list whose source is set.
func DefaultListCatalog(src ListSources, pageSize int) (*ListCatalog, error) {
	c := NewListCatalog()
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if src.AccessLogs != nil {
		add(RegisterList(c, AccessLogList(pageSize), src.AccessLogs))
	}
	if src.ChangeLogs != nil {
		add(RegisterList(c, ChangeLogList(pageSize), src.ChangeLogs))
	}
	if src.Reservations != nil {
		add(RegisterList(c, ReservationList(pageSize), src.Reservations))
	}
	if src.BoothApplications != nil {
		add(RegisterList(c, BoothApplicationList(pageSize), src.BoothApplications))
	}
	if src.BannerApplications != nil {
		add(RegisterList(c, BannerApplicationList(pageSize), src.BannerApplications))
	}
	if src.Creators != nil {
		add(RegisterList(c, CreatorList(pageSize), src.Creators))
	}
	if src.Banners != nil {
		add(RegisterList(c, BannerList(pageSize), src.Banners))
	}
	if src.HostReservations != nil {
		add(RegisterList(c, HostReservationList(pageSize), src.HostReservations))
	}
	if src.HostEvents != nil {
		add(RegisterList(c, HostEventList(pageSize), src.HostEvents))
	}
	if src.HostBoothApplications != nil {
		add(RegisterList(c, HostBoothApplicationList(pageSize), src.HostBoothApplications))
	}
	return c, errors.Join(errs...)
}

func queryKeys(fields []FilterField) []string {
	keys := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return append(keys, "page")
}

func dateRangeFilters() []FilterField {
	return []FilterField{
		{Key: "from", Label: "From", Kind: FilterDate},
		{Key: "to", Label: "To", Kind: FilterDate},
	}
}

func selectFilter(key, label string, values ...string) FilterField {
	options := []FilterOption{{Value: anyValue, Label: "All"}}
	for _, value := range values {
		options = append(options, FilterOption{Value: value, Label: value})
	}
	return FilterField{Key: key, Label: label, Kind: FilterSelect, Options: options, Default: anyValue, AnyValue: anyValue}
}

func keywordFilter() FilterField {
	return FilterField{Key: "keyword", Label: "Search", Kind: FilterText}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// AccessLogList lists sign-in and access records.
func AccessLogList(pageSize int) ListDefinition[AccessLog] {
	return ListDefinition[AccessLog]{
		Code:     ListAccessLogs,
		Title:    "Access logs",
		Path:     AdminBasePath + "/access-logs",
		Shell:    ShellAdmin,
		Endpoint: EndpointAccessLogs,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters: append([]FilterField{
			{Key: "email", Label: "Email", Kind: FilterText},
			selectFilter("success", "Result", "true", "false"),
		}, dateRangeFilters()...),
		Columns: []Column{
			{Key: "createdAt", Label: "Time"},
			{Key: "email", Label: "Email"},
			{Key: "action", Label: "Action"},
			{Key: "ip", Label: "IP address"},
			{Key: "success", Label: "Success"},
		},
		Mapper: func(l AccessLog) Row {
			return Row{ID: l.ID, Cells: map[string]string{
				"createdAt": l.CreatedAt,
				"email":     l.Email,
				"action":    l.Action,
				"ip":        l.IPAddress,
				"success":   yesNo(l.Success),
			}}
		},
	}
}

// ChangeLogList lists administrative changes.
func ChangeLogList(pageSize int) ListDefinition[ChangeLog] {
	return ListDefinition[ChangeLog]{
		Code:     ListChangeLogs,
		Title:    "Change logs",
		Path:     AdminBasePath + "/change-logs",
		Shell:    ShellAdmin,
		Endpoint: EndpointChangeLogs,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters: append([]FilterField{
			{Key: "actor", Label: "Actor", Kind: FilterText},
			selectFilter("targetType", "Target", "CREATOR", "BANNER", "EVENT", "SETTINGS"),
		}, dateRangeFilters()...),
		Columns: []Column{
			{Key: "createdAt", Label: "Time"},
			{Key: "actor", Label: "Actor"},
			{Key: "target", Label: "Target"},
			{Key: "action", Label: "Action"},
			{Key: "summary", Label: "Summary"},
		},
		Mapper: func(l ChangeLog) Row {
			return Row{ID: l.ID, Cells: map[string]string{
				"createdAt": l.CreatedAt,
				"actor":     l.Actor,
				"target":    l.TargetType + " " + l.TargetID,
				"action":    l.Action,
				"summary":   l.Summary,
			}}
		},
	}
}

var reservationStatuses = []string{"RESERVED", "CHECKED_IN", "CANCELLED"}

func reservationColumns() []Column {
	return []Column{
		{Key: "reservedAt", Label: "Reserved at"},
		{Key: "event", Label: "Event"},
		{Key: "email", Label: "Email"},
		{Key: "quantity", Label: "Qty"},
		{Key: "total", Label: "Total"},
		{Key: "status", Label: "Status"},
		{Key: "checkedIn", Label: "Checked in"},
	}
}

func reservationRow(r Reservation) Row {
	return Row{ID: r.ID, Cells: map[string]string{
		"reservedAt": r.ReservedAt,
		"event":      r.EventTitle,
		"email":      r.UserEmail,
		"quantity":   strconv.Itoa(r.Quantity),
		"total":      money(r.TotalPrice),
		"status":     r.Status,
		"checkedIn":  yesNo(r.CheckedIn),
	}}
}

func reservationFilters() []FilterField {
	return append([]FilterField{
		keywordFilter(),
		selectFilter("status", "Status", reservationStatuses...),
	}, dateRangeFilters()...)
}

// ReservationList lists every reservation on the platform.
func ReservationList(pageSize int) ListDefinition[Reservation] {
	return ListDefinition[Reservation]{
		Code:     ListReservations,
		Title:    "Reservations",
		Path:     AdminBasePath + "/reservations",
		Shell:    ShellAdmin,
		Endpoint: EndpointReservations,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters:  reservationFilters(),
		Columns:  reservationColumns(),
		Mapper:   reservationRow,
	}
}

// HostReservationList lists reservations for the host's events.
func HostReservationList(pageSize int) ListDefinition[Reservation] {
	def := ReservationList(pageSize)
	def.Code = ListHostReservations
	def.Path = HostBasePath + "/reservations"
	def.Shell = ShellHost
	def.Endpoint = EndpointHostReservations
	def.Gate = Role.Known
	return def
}

var applicationStatuses = []string{"PENDING", "APPROVED", "REJECTED"}

func boothApplicationRow(a BoothApplication) Row {
	return Row{ID: a.ID, Cells: map[string]string{
		"submittedAt": a.SubmittedAt,
		"booth":       a.BoothName,
		"applicant":   a.Applicant,
		"event":       a.EventTitle,
		"category":    a.Category,
		"status":      a.Status,
	}}
}

// BoothApplicationList lists booth applications awaiting review.
func BoothApplicationList(pageSize int) ListDefinition[BoothApplication] {
	return ListDefinition[BoothApplication]{
		Code:     ListBoothApplications,
		Title:    "Booth applications",
		Path:     AdminBasePath + "/booth-applications",
		Shell:    ShellAdmin,
		Endpoint: EndpointBoothApplications,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters: []FilterField{
			keywordFilter(),
			selectFilter("status", "Status", applicationStatuses...),
		},
		Columns: []Column{
			{Key: "submittedAt", Label: "Submitted"},
			{Key: "booth", Label: "Booth"},
			{Key: "applicant", Label: "Applicant"},
			{Key: "event", Label: "Event"},
			{Key: "category", Label: "Category"},
			{Key: "status", Label: "Status"},
		},
		Mapper: boothApplicationRow,
	}
}

// HostBoothApplicationList lists the booth applications filed by the host.
func HostBoothApplicationList(pageSize int) ListDefinition[BoothApplication] {
	def := BoothApplicationList(pageSize)
	def.Code = ListHostBoothApplications
	def.Path = HostBasePath + "/booth-applications"
	def.Shell = ShellHost
	def.Endpoint = EndpointHostBoothApplications
	def.Gate = HasEventManagerPermission
	def.Filters = append(def.Filters, FilterField{Key: "boothId", Label: "Booth", Kind: FilterText})
	return def
}

// BannerApplicationList lists paid banner requests.
func BannerApplicationList(pageSize int) ListDefinition[BannerApplication] {
	return ListDefinition[BannerApplication]{
		Code:     ListBannerApplications,
		Title:    "Banner applications",
		Path:     AdminBasePath + "/banner-applications",
		Shell:    ShellAdmin,
		Endpoint: EndpointBannerApplications,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters: []FilterField{
			keywordFilter(),
			selectFilter("status", "Status", applicationStatuses...),
		},
		Columns: []Column{
			{Key: "submittedAt", Label: "Submitted"},
			{Key: "title", Label: "Title"},
			{Key: "applicant", Label: "Applicant"},
			{Key: "slotDate", Label: "Slot date"},
			{Key: "status", Label: "Status"},
		},
		Mapper: func(a BannerApplication) Row {
			return Row{ID: a.ID, Cells: map[string]string{
				"submittedAt": a.SubmittedAt,
				"title":       a.Title,
				"applicant":   a.Applicant,
				"slotDate":    a.SlotDate,
				"status":      a.Status,
			}}
		},
	}
}

// CreatorList lists creators; rows link to the creator editor.
func CreatorList(pageSize int) ListDefinition[Creator] {
	return ListDefinition[Creator]{
		Code:     ListCreators,
		Title:    "Creators",
		Path:     AdminBasePath + "/creators",
		Shell:    ShellAdmin,
		Endpoint: EndpointCreators,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters:  []FilterField{keywordFilter()},
		Columns: []Column{
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "active", Label: "Active"},
			{Key: "createdAt", Label: "Created"},
		},
		Mapper: func(c Creator) Row {
			return Row{ID: c.ID, Link: CreatorPath(c.ID), Cells: map[string]string{
				"name":      c.Name,
				"email":     c.Email,
				"active":    yesNo(c.Active),
				"createdAt": c.CreatedAt,
			}}
		},
	}
}

// BannerList lists banners; rows link to the banner editor.
func BannerList(pageSize int) ListDefinition[Banner] {
	return ListDefinition[Banner]{
		Code:     ListBanners,
		Title:    "Banners",
		Path:     AdminBasePath + "/banners",
		Shell:    ShellAdmin,
		Endpoint: EndpointBanners,
		Gate:     HasAdminPermission,
		PageSize: pageSize,
		Filters: []FilterField{
			keywordFilter(),
			selectFilter("active", "Active", "true", "false"),
		},
		Columns: []Column{
			{Key: "position", Label: "#"},
			{Key: "title", Label: "Title"},
			{Key: "period", Label: "Period"},
			{Key: "active", Label: "Active"},
		},
		Mapper: func(b Banner) Row {
			return Row{ID: b.ID, Link: BannerPath(b.ID), Cells: map[string]string{
				"position": strconv.Itoa(b.Position),
				"title":    b.Title,
				"period":   b.StartDate + " - " + b.EndDate,
				"active":   yesNo(b.Active),
			}}
		},
	}
}

// HostEventList lists the host's events.
func HostEventList(pageSize int) ListDefinition[Event] {
	return ListDefinition[Event]{
		Code:     ListHostEvents,
		Title:    "Events",
		Path:     HostBasePath + "/events",
		Shell:    ShellHost,
		Endpoint: EndpointHostEvents,
		Gate:     Role.Known,
		PageSize: pageSize,
		Filters: []FilterField{
			keywordFilter(),
			selectFilter("status", "Status", "DRAFT", "OPEN", "CLOSED"),
		},
		Columns: []Column{
			{Key: "startsAt", Label: "Starts"},
			{Key: "title", Label: "Title"},
			{Key: "venue", Label: "Venue"},
			{Key: "sold", Label: "Sold"},
			{Key: "status", Label: "Status"},
		},
		Mapper: func(e Event) Row {
			return Row{ID: e.ID, Cells: map[string]string{
				"startsAt": e.StartsAt,
				"title":    e.Title,
				"venue":    e.Venue,
				"sold":     fmt.Sprintf("%d / %d", e.TicketsIn, e.Capacity),
				"status":   e.Status,
			}}
		},
	}
}

// CreatorPath is the editor route for a creator.
func CreatorPath(id string) string {
	return "/creators/" + id
}

// BannerPath is the editor route for a banner.
func BannerPath(id string) string {
	return AdminBasePath + "/banners/" + id
}
