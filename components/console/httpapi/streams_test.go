package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
	"github.com/goliatone/go-ticketing-dashboard/components/console/queries"
)

func TestRefreshStreamsRequireSignedInViewer(t *testing.T) {
	f := newFixture(t, nil)

	for _, path := range []string{"/console/events", "/console/ws"} {
		resp := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
	assert.Equal(t, 0, f.hub.Subscribers())
}

func TestEventStreamSubscribesKnownViewer(t *testing.T) {
	f := newFixture(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/console/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token(t, "GENERAL"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWebSocketStreamChecksViewerAndOrigin(t *testing.T) {
	f := newFixture(t, nil)
	endpoint := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/console/ws"

	header := http.Header{"Authorization": []string{"Bearer " + token(t, "ADMIN")}}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(endpoint, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", f.server.URL)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
}

type recordingDashboard struct {
	mu     sync.Mutex
	inputs []queries.DashboardInput
}

func (r *recordingDashboard) Query(_ context.Context, input queries.DashboardInput) (console.PageData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	return console.PageData{Title: "Recorded dashboard", Viewer: input.Viewer}, nil
}

func TestDashboardRoutesUseDashboardQuery(t *testing.T) {
	dashboard := &recordingDashboard{}
	f := newFixtureWith(t, fixtureOptions{dashboard: dashboard})

	resp := f.do(t, http.MethodGet, "/admin_dashboard", "ADMIN", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Recorded dashboard", f.renderer.value("title"))

	resp = f.do(t, http.MethodGet, "/host", "EVENT_MANAGER", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dashboard.mu.Lock()
	defer dashboard.mu.Unlock()
	require.Len(t, dashboard.inputs, 2)
	assert.Equal(t, console.ScopeAdmin, dashboard.inputs[0].Scope)
	assert.Equal(t, console.RoleAdmin, dashboard.inputs[0].Viewer.Role)
	assert.Equal(t, console.ScopeHost, dashboard.inputs[1].Scope)
	assert.Equal(t, console.RoleEventManager, dashboard.inputs[1].Viewer.Role)
}
