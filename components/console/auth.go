package console

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionCookie is the cookie holding the backend-issued access token.
const DefaultSessionCookie = "ticketing_session"

var errMissingToken = errors.New("console: session token missing")

type sessionClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenViewerResolver builds a ViewerContext from the bearer token or session
// cookie. With a secret configured tokens must carry a valid HMAC signature;
// without one the claims are read as-is and the backend stays the authority.
type TokenViewerResolver struct {
	secret     []byte
	cookieName string
}

// NewTokenViewerResolver creates a resolver. An empty cookie name selects DefaultSessionCookie.
func NewTokenViewerResolver(secret, cookieName string) *TokenViewerResolver {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &TokenViewerResolver{secret: []byte(secret), cookieName: cookieName}
}

// CookieName returns the session cookie the resolver reads.
func (r *TokenViewerResolver) CookieName() string {
	return r.cookieName
}

// ResolveRequest reads the Authorization and Cookie headers of an HTTP request.
func (r *TokenViewerResolver) ResolveRequest(req *http.Request) ViewerContext {
	return r.Resolve(req.Header.Get("Authorization"), req.Header.Get("Cookie"))
}

// Resolve parses the raw Authorization header value and Cookie header value.
// Any failure yields an anonymous viewer with an unknown role.
func (r *TokenViewerResolver) Resolve(authorization, cookieHeader string) ViewerContext {
	raw := bearerToken(authorization)
	if raw == "" {
		raw = cookieValue(cookieHeader, r.cookieName)
	}
	viewer, err := r.parse(raw)
	if err != nil {
		return ViewerContext{}
	}
	return viewer
}

func (r *TokenViewerResolver) parse(raw string) (ViewerContext, error) {
	if raw == "" {
		return ViewerContext{}, errMissingToken
	}
	claims := &sessionClaims{}
	if len(r.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return ViewerContext{}, fmt.Errorf("console: parse session token: %w", err)
		}
	} else {
		_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return r.secret, nil
		})
		if err != nil {
			return ViewerContext{}, fmt.Errorf("console: verify session token: %w", err)
		}
	}
	return ViewerContext{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   ParseRole(claims.Role),
		Token:  raw,
	}, nil
}

// Issue signs a session token for viewer. A zero ttl never expires. Without a
// secret the token is unsigned and only accepted by resolvers that lack one.
func (r *TokenViewerResolver) Issue(viewer ViewerContext, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		Role:  string(viewer.Role),
		Email: viewer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  viewer.UserID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	if len(r.secret) == 0 {
		return jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// ExpiredSessionCookie returns a Set-Cookie value that clears the session.
func (r *TokenViewerResolver) ExpiredSessionCookie() string {
	cookie := &http.Cookie{
		Name:     r.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return cookie.String()
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func cookieValue(header, name string) string {
	if header == "" {
		return ""
	}
	req := &http.Request{Header: http.Header{"Cookie": []string{header}}}
	cookie, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
