// Package credstore persists the token pair issued by the footbook auth
// endpoint. The pair is opaque to this package — no format is validated.
// Both fields are always read and written as a unit: a store never holds
// a partial pair.
package credstore

import (
	"context"
	"errors"
)

// Literal key names used by durable backends. These match the keys the
// mobile app stores in its secure key-value storage.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// ErrPartialPair is returned by Load when a backend holds only one of the
// two tokens. This state is corruption, not a valid session.
var ErrPartialPair = errors.New("credstore: partial token pair")

// TokenPair is the credential pair issued on login, signup, or refresh.
// Both fields are opaque bearer strings.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store is the credential persistence contract. Implementations must treat
// the pair atomically: Save writes both fields or neither, Clear removes
// both. Load returns (nil, nil) when no pair is stored.
type Store interface {
	Load(ctx context.Context) (*TokenPair, error)
	Save(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}
