package console

// templateContext flattens page data into plain maps so templates do not depend
// on Go field names.
func templateContext(data PageData) map[string]any {
	ctx := map[string]any{
		"title":   data.Title,
		"path":    data.Path,
		"status":  data.Status,
		"message": data.Message,
		"viewer": map[string]any{
			"email":     data.Viewer.Email,
			"role":      data.Viewer.Role.String(),
			"anonymous": data.Viewer.Anonymous(),
		},
		"nav":    navContext(data.Nav),
		"toasts": toastContext(data.Toasts),
	}
	if data.List != nil {
		ctx["list"] = listContext(*data.List)
	}
	if data.Dashboard != nil {
		ctx["dashboard"] = dashboardContext(*data.Dashboard)
	}
	if data.Form != nil {
		ctx["form"] = formContext(*data.Form)
	}
	return ctx
}

func navContext(nav NavView) map[string]any {
	return map[string]any{
		"shell":   nav.Shell,
		"title":   nav.Title,
		"visible": nav.Visible,
		"items":   navItems(nav.Items),
	}
}

func navItems(items []NavItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"path":     item.Path,
			"label":    item.Label,
			"icon":     item.Icon,
			"active":   item.Active,
			"children": navItems(item.Children),
		})
	}
	return out
}

func toastContext(toasts []Toast) []map[string]any {
	out := make([]map[string]any, 0, len(toasts))
	for _, toast := range toasts {
		out = append(out, map[string]any{
			"id":      toast.ID,
			"level":   string(toast.Level),
			"message": toast.Message,
		})
	}
	return out
}

func listContext(snap ListSnapshot) map[string]any {
	columns := make([]map[string]any, 0, len(snap.Columns))
	for _, col := range snap.Columns {
		columns = append(columns, map[string]any{"key": col.Key, "label": col.Label})
	}
	filters := make([]map[string]any, 0, len(snap.Filters))
	for _, f := range snap.Filters {
		options := make([]map[string]any, 0, len(f.Options))
		for _, opt := range f.Options {
			options = append(options, map[string]any{
				"value":    opt.Value,
				"label":    opt.Label,
				"selected": opt.Value == f.Value,
			})
		}
		filters = append(filters, map[string]any{
			"key":     f.Key,
			"label":   f.Label,
			"kind":    string(f.Kind),
			"value":   f.Value,
			"options": options,
		})
	}
	rows := make([]map[string]any, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		rows = append(rows, map[string]any{
			"id":     row.ID,
			"link":   row.Link,
			"values": row.Values,
		})
	}
	return map[string]any{
		"code":           snap.Code,
		"title":          snap.Title,
		"path":           snap.Path,
		"columns":        columns,
		"filters":        filters,
		"rows":           rows,
		"page":           snap.DisplayPage,
		"total_elements": snap.TotalElements,
		"total_pages":    snap.TotalPages,
		"failed":         snap.Failed,
		"has_prev":       snap.HasPrev,
		"has_next":       snap.HasNext,
		"prev_url":       snap.PrevURL,
		"next_url":       snap.NextURL,
		"export_url":     snap.ExportURL,
	}
}

func dashboardContext(payload DashboardPayload) map[string]any {
	areas := map[string]any{}
	for _, area := range []string{AreaMain, AreaSidebar, AreaFooter} {
		widgets := make([]map[string]any, 0, len(payload.Widgets[area]))
		for _, w := range payload.Widgets[area] {
			widgets = append(widgets, map[string]any{
				"id":   w.ID,
				"code": w.Code,
				"name": w.Name,
				"data": map[string]any(w.Data),
			})
		}
		areas[area] = widgets
	}
	return map[string]any{
		"scope":   string(payload.Stats.Scope),
		"derived": map[string]any{
			"checkin_rate":         payload.Stats.Derived.CheckinRate,
			"cancellation_rate":    payload.Stats.Derived.CancellationRate,
			"average_ticket_price": money(payload.Stats.Derived.AverageTicketPrice),
		},
		"areas": areas,
	}
}

func formContext(form FormView) map[string]any {
	fields := make([]map[string]any, 0, len(form.Fields))
	for _, f := range form.Fields {
		fields = append(fields, map[string]any{
			"key":      f.Key,
			"label":    f.Label,
			"type":     string(f.Type),
			"required": f.Required,
			"help":     f.Help,
			"value":    f.Value,
			"checked":  f.Checked,
		})
	}
	return map[string]any{
		"resource":      form.Resource,
		"title":         form.Title,
		"state":         string(form.State),
		"action":        form.Action,
		"cancel_url":    form.CancelURL,
		"delete_action": form.DeleteAction,
		"fields":        fields,
	}
}
