package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

// MockData seeds the in-memory backend used for demos and tests.
type MockData struct {
	AccessLogs         []console.AccessLog
	ChangeLogs         []console.ChangeLog
	Reservations       []console.Reservation
	BoothApplications  []console.BoothApplication
	BannerApplications []console.BannerApplication
	Creators           []console.Creator
	Banners            []console.Banner
	Events             []console.Event
	Settings           console.Settings
	ReservationSummary console.ReservationSummary
	Sales              console.SalesSummary
	ManagedBoothID     string
	// Token, when set, must be presented as a bearer token.
	Token string
}

// MockServer serves the backend REST surface from memory.
type MockServer struct {
	mu   sync.RWMutex
	data MockData
	mux  *http.ServeMux
}

// NewMockServer builds an http.Handler over the fixtures.
func NewMockServer(data MockData) *MockServer {
	s := &MockServer{data: cloneMockData(data), mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.data.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.data.Token {
		writeMockError(w, http.StatusUnauthorized, "UNAUTHORIZED", "session expired")
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *MockServer) routes() {
	s.mux.HandleFunc("GET "+console.EndpointAccessLogs, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writePage(w, r, s.data.AccessLogs)
	})
	s.mux.HandleFunc("GET "+console.EndpointChangeLogs, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writePage(w, r, s.data.ChangeLogs)
	})
	for _, endpoint := range []string{console.EndpointReservations, console.EndpointHostReservations} {
		s.mux.HandleFunc("GET "+endpoint, func(w http.ResponseWriter, r *http.Request) {
			s.mu.RLock()
			defer s.mu.RUnlock()
			writePage(w, r, s.data.Reservations)
		})
	}
	for _, endpoint := range []string{console.EndpointBoothApplications, console.EndpointHostBoothApplications} {
		s.mux.HandleFunc("GET "+endpoint, func(w http.ResponseWriter, r *http.Request) {
			s.mu.RLock()
			defer s.mu.RUnlock()
			writePage(w, r, s.data.BoothApplications)
		})
	}
	s.mux.HandleFunc("GET "+console.EndpointBannerApplications, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writePage(w, r, s.data.BannerApplications)
	})
	s.mux.HandleFunc("GET "+console.EndpointHostEvents, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writePage(w, r, s.data.Events)
	})

	handleCollection(s, console.EndpointCreators, &s.data.Creators,
		func(c console.Creator) string { return c.ID },
		func(c *console.Creator, id string) { c.ID = id })
	handleCollection(s, console.EndpointBanners, &s.data.Banners,
		func(b console.Banner) string { return b.ID },
		func(b *console.Banner, id string) { b.ID = id })

	s.mux.HandleFunc("GET "+console.EndpointSettings, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writeMockJSON(w, http.StatusOK, s.data.Settings)
	})
	s.mux.HandleFunc("PATCH "+console.EndpointSettings, func(w http.ResponseWriter, r *http.Request) {
		var in console.Settings
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeMockError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		s.mu.Lock()
		s.data.Settings = in
		s.mu.Unlock()
		writeMockJSON(w, http.StatusOK, in)
	})

	for _, scope := range []console.StatsScope{console.ScopeAdmin, console.ScopeHost} {
		s.mux.HandleFunc("GET "+statsPath(scope, "stats"), func(w http.ResponseWriter, r *http.Request) {
			s.mu.RLock()
			defer s.mu.RUnlock()
			writeMockJSON(w, http.StatusOK, s.data.ReservationSummary)
		})
		s.mux.HandleFunc("GET "+statsPath(scope, "sales"), func(w http.ResponseWriter, r *http.Request) {
			s.mu.RLock()
			defer s.mu.RUnlock()
			writeMockJSON(w, http.StatusOK, s.data.Sales)
		})
	}

	s.mux.HandleFunc("GET "+console.EndpointHostManagedBooth, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.data.ManagedBoothID == "" {
			writeMockError(w, http.StatusNotFound, "NO_BOOTH", "no managed booth")
			return
		}
		writeMockJSON(w, http.StatusOK, map[string]string{"boothId": s.data.ManagedBoothID})
	})
}

func handleCollection[T any](s *MockServer, endpoint string, items *[]T, idOf func(T) string, setID func(*T, string)) {
	find := func(id string) int {
		for i, item := range *items {
			if idOf(item) == id {
				return i
			}
		}
		return -1
	}
	s.mux.HandleFunc("GET "+endpoint, func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		writePage(w, r, *items)
	})
	s.mux.HandleFunc("GET "+endpoint+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		idx := find(r.PathValue("id"))
		if idx < 0 {
			writeMockError(w, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}
		writeMockJSON(w, http.StatusOK, (*items)[idx])
	})
	s.mux.HandleFunc("POST "+endpoint, func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeMockError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		setID(&in, uuid.NewString())
		s.mu.Lock()
		*items = append(*items, in)
		s.mu.Unlock()
		writeMockJSON(w, http.StatusCreated, in)
	})
	s.mux.HandleFunc("PATCH "+endpoint+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeMockError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		id := r.PathValue("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		idx := find(id)
		if idx < 0 {
			writeMockError(w, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}
		setID(&in, id)
		(*items)[idx] = in
		writeMockJSON(w, http.StatusOK, in)
	})
	s.mux.HandleFunc("DELETE "+endpoint+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx := find(r.PathValue("id"))
		if idx < 0 {
			writeMockError(w, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}
		*items = append((*items)[:idx], (*items)[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	})
}

// writePage filters items by the query and writes one page. Filters match
// case-insensitively against any string field; from/to compare against date
// fields lexically.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	size, _ := strconv.Atoi(query.Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = console.DefaultPageSize
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if matchesQuery(item, query) {
			matched = append(matched, item)
		}
	}
	total := int64(len(matched))
	start := min(page*size, len(matched))
	end := min(start+size, len(matched))
	writeMockJSON(w, http.StatusOK, console.Page[T]{
		Content:       matched[start:end],
		TotalElements: total,
		TotalPages:    console.TotalPagesFor(total, size),
		Number:        page,
	})
}

func matchesQuery(item any, query map[string][]string) bool {
	fields := flatten(item)
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := strings.TrimSpace(strings.Join(query[key], ""))
		if value == "" || key == "page" || key == "size" || value == "ALL" {
			continue
		}
		switch key {
		case "from", "to":
			date := firstDate(fields)
			if date == "" {
				continue
			}
			if key == "from" && date[:min(10, len(date))] < value {
				return false
			}
			if key == "to" && date[:min(10, len(date))] > value {
				return false
			}
		default:
			if key == "keyword" {
				if !anyContains(fields, value) {
					return false
				}
				continue
			}
			field, ok := fields[key]
			if ok && !strings.Contains(strings.ToLower(field), strings.ToLower(value)) {
				return false
			}
		}
	}
	return true
}

func flatten(item any) map[string]string {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(map[string]string, len(generic))
	for key, value := range generic {
		switch v := value.(type) {
		case string:
			out[key] = v
		case bool, float64:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

func firstDate(fields map[string]string) string {
	for _, key := range []string{"createdAt", "reservedAt", "submittedAt", "startsAt", "slotDate"} {
		if v := fields[key]; v != "" {
			return v
		}
	}
	return ""
}

func anyContains(fields map[string]string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

func writeMockJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMockError(w http.ResponseWriter, status int, code, message string) {
	writeMockJSON(w, status, map[string]string{"code": code, "message": message})
}

func cloneMockData(in MockData) MockData {
	out := in
	out.AccessLogs = append([]console.AccessLog(nil), in.AccessLogs...)
	out.ChangeLogs = append([]console.ChangeLog(nil), in.ChangeLogs...)
	out.Reservations = append([]console.Reservation(nil), in.Reservations...)
	out.BoothApplications = append([]console.BoothApplication(nil), in.BoothApplications...)
	out.BannerApplications = append([]console.BannerApplication(nil), in.BannerApplications...)
	out.Creators = append([]console.Creator(nil), in.Creators...)
	out.Banners = append([]console.Banner(nil), in.Banners...)
	out.Events = append([]console.Event(nil), in.Events...)
	out.Sales.Daily = append([]console.SalesPoint(nil), in.Sales.Daily...)
	return out
}
