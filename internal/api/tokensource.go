package api

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenSource exposes the stored credential pair as an oauth2.TokenSource
// so the client plugs into oauth2-aware consumers (oauth2.NewClient and
// friends). The source reads the store on every call; it does not refresh —
// rotation stays inside the pipeline, where the 401 signal lives.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, client: c}
}

type storeTokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	pair, err := s.client.store.Load(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("api: reading credentials: %w", err)
	}

	if pair == nil {
		return nil, ErrNotLoggedIn
	}

	return &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}
