package console

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenViewerResolverVerifiesSignature(t *testing.T) {
	issuer := NewTokenViewerResolver("secret", "")
	token, err := issuer.Issue(ViewerContext{UserID: "u-1", Email: "a@example.com", Role: RoleEventManager}, time.Hour)
	require.NoError(t, err)

	viewer := issuer.Resolve("Bearer "+token, "")
	assert.Equal(t, "u-1", viewer.UserID)
	assert.Equal(t, "a@example.com", viewer.Email)
	assert.Equal(t, RoleEventManager, viewer.Role)
	assert.Equal(t, token, viewer.Token)

	other := NewTokenViewerResolver("another", "")
	assert.True(t, other.Resolve("Bearer "+token, "").Anonymous())
}

func TestTokenViewerResolverReadsCookie(t *testing.T) {
	resolver := NewTokenViewerResolver("", "")
	token, err := resolver.Issue(ViewerContext{UserID: "u-2", Role: RoleAdmin}, 0)
	require.NoError(t, err)

	viewer := resolver.Resolve("", "theme=dark; "+DefaultSessionCookie+"="+token)
	assert.Equal(t, RoleAdmin, viewer.Role)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	assert.Equal(t, "u-2", resolver.ResolveRequest(req).UserID)
}

func TestTokenViewerResolverFailsClosed(t *testing.T) {
	resolver := NewTokenViewerResolver("secret", "")
	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt"} {
		viewer := resolver.Resolve(header, "")
		assert.False(t, viewer.Role.Known(), header)
	}

	expired, err := resolver.Issue(ViewerContext{UserID: "u-3", Role: RoleAdmin}, -time.Minute)
	require.NoError(t, err)
	assert.True(t, resolver.Resolve("Bearer "+expired, "").Anonymous())
}

func TestExpiredSessionCookie(t *testing.T) {
	cookie := NewTokenViewerResolver("", "sid").ExpiredSessionCookie()
	assert.Contains(t, cookie, "sid=")
	assert.Contains(t, cookie, "Max-Age=0")
	assert.Contains(t, cookie, "HttpOnly")
}
