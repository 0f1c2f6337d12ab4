package remote

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// NewHTTPClient returns an *http.Client that attaches the bearer credential to
// every request. The token is pre-issued by the list service, so a static
// token source is all the flow there is.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	})
	return oauth2.NewClient(ctx, src)
}
