package console

import "context"

// ViewerContext captures the signed-in user the console renders for. It is
// resolved once per request and passed explicitly or through the context.
type ViewerContext struct {
	UserID string
	Email  string
	Role   Role
	Locale string
	Token  string
}

// Anonymous reports whether no session backs the viewer.
func (v ViewerContext) Anonymous() bool {
	return v.UserID == "" && v.Token == ""
}

type viewerContextKey struct{}

// ContextWithViewer stores the viewer on ctx.
func ContextWithViewer(ctx context.Context, viewer ViewerContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, viewerContextKey{}, viewer)
}

// ViewerFromContext extracts the viewer stored by ContextWithViewer.
func ViewerFromContext(ctx context.Context) (ViewerContext, bool) {
	if ctx == nil {
		return ViewerContext{}, false
	}
	viewer, ok := ctx.Value(viewerContextKey{}).(ViewerContext)
	return viewer, ok
}
