package console

import (
	"context"
	"log/slog"
	"strings"
)

// PermissionGate decides whether a role may see a shell or link.
type PermissionGate func(Role) bool

// ManagedEntityResolver looks up the entity a host manages (their booth), used to
// parameterize shell links.
type ManagedEntityResolver interface {
	ResolveManagedEntity(ctx context.Context, viewer ViewerContext) (string, error)
}

// NavLink is a static navigation entry. Links marked Parameterized carry an
// "{id}" placeholder in ParamPath that is filled with the managed entity id.
type NavLink struct {
	Path          string
	ParamPath     string
	Label         string
	Icon          string
	Visible       PermissionGate
	Parameterized bool
	Exact         bool
	Children      []NavLink
}

// NavShell is a role gated side navigation tree.
type NavShell struct {
	Code     string
	Title    string
	Gate     PermissionGate
	Links    []NavLink
	Resolver ManagedEntityResolver
	Logger   *slog.Logger
}

// NavItem is a rendered navigation entry.
type NavItem struct {
	Path     string    `json:"path"`
	Label    string    `json:"label"`
	Icon     string    `json:"icon,omitempty"`
	Active   bool      `json:"active"`
	Children []NavItem `json:"children,omitempty"`
}

// NavView is what a shell renders for a viewer. Visible is false when the
// viewer's role lacks the shell permission, in which case Items is empty.
type NavView struct {
	Shell     string    `json:"shell"`
	Title     string    `json:"title"`
	Visible   bool      `json:"visible"`
	ManagedID string    `json:"managedId,omitempty"`
	Items     []NavItem `json:"items"`
}

// Render resolves the shell for the viewer at currentPath.
func (s *NavShell) Render(ctx context.Context, viewer ViewerContext, currentPath string) NavView {
	view := NavView{Shell: s.Code, Title: s.Title}
	if s.Gate == nil || !s.Gate(viewer.Role) {
		return view
	}
	view.Visible = true
	if s.Resolver != nil && s.hasParameterizedLinks(s.Links, viewer.Role) {
		view.ManagedID = s.resolveManaged(ctx, viewer)
	}
	view.Items = s.renderLinks(s.Links, viewer.Role, currentPath, view.ManagedID)
	return view
}

func (s *NavShell) resolveManaged(ctx context.Context, viewer ViewerContext) string {
	id, err := s.Resolver.ResolveManagedEntity(ctx, viewer)
	if err != nil {
		s.logger().WarnContext(ctx, "navigation: managed entity lookup failed",
			"shell", s.Code,
			"user_id", viewer.UserID,
			"error", err,
		)
		return ""
	}
	return strings.TrimSpace(id)
}

func (s *NavShell) renderLinks(links []NavLink, role Role, currentPath, managedID string) []NavItem {
	items := make([]NavItem, 0, len(links))
	for _, link := range links {
		if link.Visible != nil && !link.Visible(role) {
			continue
		}
		path := link.Path
		if link.Parameterized && managedID != "" && link.ParamPath != "" {
			path = strings.ReplaceAll(link.ParamPath, "{id}", managedID)
		}
		item := NavItem{
			Path:   path,
			Label:  link.Label,
			Icon:   link.Icon,
			Active: pathMatches(currentPath, path, link.Exact),
		}
		if len(link.Children) > 0 {
			item.Children = s.renderLinks(link.Children, role, currentPath, managedID)
			if len(item.Children) == 0 && link.Path == "" {
				continue
			}
			for _, child := range item.Children {
				if child.Active {
					item.Active = true
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// hasParameterizedLinks reports whether role can see any parameterized link.
func (s *NavShell) hasParameterizedLinks(links []NavLink, role Role) bool {
	for _, link := range links {
		if link.Visible != nil && !link.Visible(role) {
			continue
		}
		if link.Parameterized || s.hasParameterizedLinks(link.Children, role) {
			return true
		}
	}
	return false
}

func (s *NavShell) logger() *slog.Logger {
	return normalizeLogger(s.Logger)
}

// pathMatches reports whether current is linkPath or, unless exact, one of its descendants.
func pathMatches(current, linkPath string, exact bool) bool {
	if linkPath == "" {
		return false
	}
	current = strings.TrimRight(current, "/")
	linkPath = strings.TrimRight(linkPath, "/")
	if current == linkPath {
		return true
	}
	if exact || linkPath == "" {
		return false
	}
	return strings.HasPrefix(current, linkPath+"/")
}
