package console

import "log/slog"

const (
	// AdminBasePath prefixes every admin console route.
	AdminBasePath = "/admin_dashboard"
	// HostBasePath prefixes every host console route.
	HostBasePath = "/host"

	ShellAdmin = "admin"
	ShellHost  = "host"
)

// NewAdminShell returns the admin side navigation, gated on admin permission.
func NewAdminShell(logger *slog.Logger) *NavShell {
	return &NavShell{
		Code:   ShellAdmin,
		Title:  "Administration",
		Gate:   HasAdminPermission,
		Logger: logger,
		Links: []NavLink{
			{Path: AdminBasePath, Label: "Dashboard", Icon: "home", Exact: true},
			{Path: AdminBasePath + "/creators", Label: "Creators", Icon: "users"},
			{Path: AdminBasePath + "/banners", Label: "Banners", Icon: "image"},
			{Path: AdminBasePath + "/banner-applications", Label: "Banner applications", Icon: "inbox"},
			{Path: AdminBasePath + "/booth-applications", Label: "Booth applications", Icon: "store"},
			{Path: AdminBasePath + "/reservations", Label: "Reservations", Icon: "ticket"},
			{
				Label: "Logs",
				Icon:  "list",
				Children: []NavLink{
					{Path: AdminBasePath + "/access-logs", Label: "Access logs"},
					{Path: AdminBasePath + "/change-logs", Label: "Change logs"},
				},
			},
			{Path: AdminBasePath + "/settings", Label: "Settings", Icon: "settings"},
		},
	}
}

// NewHostShell returns the host side navigation. Booth links are parameterized
// with the host's managed booth once the resolver returns it.
func NewHostShell(resolver ManagedEntityResolver, logger *slog.Logger) *NavShell {
	return &NavShell{
		Code:     ShellHost,
		Title:    "Host",
		Gate:     Role.Known,
		Resolver: resolver,
		Logger:   logger,
		Links: []NavLink{
			{Path: HostBasePath, Label: "Dashboard", Icon: "home", Exact: true},
			{Path: HostBasePath + "/events", Label: "Events", Icon: "calendar"},
			{Path: HostBasePath + "/reservations", Label: "Reservations", Icon: "ticket"},
			{
				Label:   "Booth management",
				Icon:    "store",
				Visible: HasEventManagerPermission,
				Children: []NavLink{
					{
						Path:          HostBasePath + "/booths",
						ParamPath:     HostBasePath + "/booths/{id}",
						Label:         "My booth",
						Parameterized: true,
					},
					{Path: HostBasePath + "/booth-applications", Label: "Booth applications"},
				},
			},
		},
	}
}
