package console

import (
	"context"
	"strconv"
	"strings"
)

// NewCreatorResource builds the creator editor form.
func NewCreatorResource(store EntityStore[Creator]) *Resource[Creator] {
	return &Resource[Creator]{
		ResourceCode: FormCreators,
		Label:        "Creator",
		ListCode:     ListCreators,
		ListPath:     AdminBasePath + "/creators",
		NewPath:      AdminBasePath + "/creators/new",
		ItemPath:     CreatorPath,
		Store:        store,
		ID:           func(c Creator) string { return c.ID },
		Defaults:     func() Creator { return Creator{Active: true} },
		Fields: []FormField[Creator]{
			{
				Key: "name", Label: "Name", Type: FieldText, Required: true,
				Get: func(c Creator) string { return c.Name },
				Set: func(c *Creator, v string) error { c.Name = v; return nil },
			},
			{
				Key: "email", Label: "Email", Type: FieldEmail, Required: true,
				Get: func(c Creator) string { return c.Email },
				Set: func(c *Creator, v string) error { c.Email = v; return nil },
			},
			{
				Key: "description", Label: "Description", Type: FieldTextarea,
				Get: func(c Creator) string { return c.Description },
				Set: func(c *Creator, v string) error { c.Description = v; return nil },
			},
			{
				Key: "profileImageUrl", Label: "Profile image URL", Type: FieldURL,
				Get: func(c Creator) string { return c.ProfileURL },
				Set: func(c *Creator, v string) error { c.ProfileURL = v; return nil },
			},
			{
				Key: "socialLinks", Label: "Social links", Type: FieldTextarea, Help: "One link per line",
				Get: func(c Creator) string { return strings.Join(c.SocialLinks, "\n") },
				Set: func(c *Creator, v string) error { c.SocialLinks = splitLines(v); return nil },
			},
			{
				Key: "active", Label: "Active", Type: FieldCheckbox,
				Get: func(c Creator) string { return strconv.FormatBool(c.Active) },
				Set: func(c *Creator, v string) error { c.Active = parseBool(v); return nil },
			},
		},
	}
}

// NewBannerResource builds the banner editor form.
func NewBannerResource(store EntityStore[Banner]) *Resource[Banner] {
	return &Resource[Banner]{
		ResourceCode: FormBanners,
		Label:        "Banner",
		ListCode:     ListBanners,
		ListPath:     AdminBasePath + "/banners",
		NewPath:      AdminBasePath + "/banners/new",
		ItemPath:     BannerPath,
		Store:        store,
		ID:           func(b Banner) string { return b.ID },
		Fields: []FormField[Banner]{
			{
				Key: "title", Label: "Title", Type: FieldText, Required: true,
				Get: func(b Banner) string { return b.Title },
				Set: func(b *Banner, v string) error { b.Title = v; return nil },
			},
			{
				Key: "imageUrl", Label: "Image URL", Type: FieldURL, Required: true,
				Get: func(b Banner) string { return b.ImageURL },
				Set: func(b *Banner, v string) error { b.ImageURL = v; return nil },
			},
			{
				Key: "linkUrl", Label: "Link URL", Type: FieldURL,
				Get: func(b Banner) string { return b.LinkURL },
				Set: func(b *Banner, v string) error { b.LinkURL = v; return nil },
			},
			{
				Key: "position", Label: "Position", Type: FieldNumber,
				Get: func(b Banner) string { return strconv.Itoa(b.Position) },
				Set: func(b *Banner, v string) (err error) { b.Position, err = parseNonNegative(v); return err },
			},
			{
				Key: "startDate", Label: "Start date", Type: FieldDate,
				Get: func(b Banner) string { return b.StartDate },
				Set: func(b *Banner, v string) error { b.StartDate = v; return nil },
			},
			{
				Key: "endDate", Label: "End date", Type: FieldDate,
				Get: func(b Banner) string { return b.EndDate },
				Set: func(b *Banner, v string) error { b.EndDate = v; return nil },
			},
			{
				Key: "active", Label: "Active", Type: FieldCheckbox,
				Get: func(b Banner) string { return strconv.FormatBool(b.Active) },
				Set: func(b *Banner, v string) error { b.Active = parseBool(v); return nil },
			},
		},
	}
}

// NewSettingsResource builds the update-only site settings form.
func NewSettingsResource(store SettingsStore) *Resource[Settings] {
	path := AdminBasePath + "/settings"
	return &Resource[Settings]{
		ResourceCode: FormSettings,
		Label:        "Settings",
		ListPath:     path,
		NewPath:      path,
		ItemPath:     func(string) string { return path },
		Singleton:    true,
		Store:        settingsEntityStore{store: store},
		Fields: []FormField[Settings]{
			{
				Key: "siteName", Label: "Site name", Type: FieldText, Required: true,
				Get: func(s Settings) string { return s.SiteName },
				Set: func(s *Settings, v string) error { s.SiteName = v; return nil },
			},
			{
				Key: "supportEmail", Label: "Support email", Type: FieldEmail, Required: true,
				Get: func(s Settings) string { return s.SupportEmail },
				Set: func(s *Settings, v string) error { s.SupportEmail = v; return nil },
			},
			{
				Key: "reservationLimit", Label: "Tickets per reservation", Type: FieldNumber,
				Get: func(s Settings) string { return strconv.Itoa(s.ReservationLimit) },
				Set: func(s *Settings, v string) (err error) { s.ReservationLimit, err = parseNonNegative(v); return err },
			},
			{
				Key: "notice", Label: "Site notice", Type: FieldTextarea,
				Get: func(s Settings) string { return s.Notice },
				Set: func(s *Settings, v string) error { s.Notice = v; return nil },
			},
			{
				Key: "maintenanceMode", Label: "Maintenance mode", Type: FieldCheckbox,
				Get: func(s Settings) string { return strconv.FormatBool(s.MaintenanceMode) },
				Set: func(s *Settings, v string) error { s.MaintenanceMode = parseBool(v); return nil },
			},
		},
	}
}

type settingsEntityStore struct {
	store SettingsStore
}

func (s settingsEntityStore) Get(ctx context.Context, _ string) (Settings, error) {
	return s.store.GetSettings(ctx)
}

func (s settingsEntityStore) Create(context.Context, Settings) (Settings, error) {
	return Settings{}, errCreateNotAllowed
}

func (s settingsEntityStore) Update(ctx context.Context, _ string, settings Settings) (Settings, error) {
	return s.store.UpdateSettings(ctx, settings)
}

func (s settingsEntityStore) Delete(context.Context, string) error {
	return errDeleteNotAllowed
}

func splitLines(v string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(v, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
