package gorouter

import (
	"html"
	"mime"
	"net/http"
	"net/url"
	"strings"

	router "github.com/goliatone/go-router"
)

type statusSetter interface {
	Status(code int) router.Context
}

func queryLookup(ctx router.Context) func(string) string {
	return func(key string) string {
		return ctx.Query(key)
	}
}

// queryValues collects the non-empty values of keys.
func queryValues(keys []string, lookup func(string) string) url.Values {
	values := url.Values{}
	for _, key := range keys {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			values.Set(key, v)
		}
	}
	return values
}

func setStatus(ctx router.Context, status int) {
	if s, ok := ctx.(statusSetter); ok {
		s.Status(status)
	}
}

func sendHTML(ctx router.Context, status int, body []byte) error {
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	setStatus(ctx, status)
	return ctx.Send(body)
}

// redirect answers 303 with a Location header. The body refreshes to the
// same target for adapters that cannot set the status.
func redirect(ctx router.Context, location string) error {
	ctx.SetHeader("Location", location)
	return sendHTML(ctx, http.StatusSeeOther, redirectPage(location))
}

func redirectPage(location string) []byte {
	escaped := html.EscapeString(location)
	return []byte(`<!doctype html><meta http-equiv="refresh" content="0;url=` + escaped + `"><a href="` + escaped + `">Continue</a>`)
}

func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
