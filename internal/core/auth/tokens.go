package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/Meet0105/repoza-sub001/internal/core/kv"
)

// StoredToken is the persisted result of a sign-in.
type StoredToken struct {
	Provider    string    `json:"provider"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry,omitzero"`
	SignedInAt  time.Time `json:"signed_in_at"`
}

// Expired reports whether the token has a known expiry in the past.
func (t StoredToken) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && now.After(t.Expiry)
}

// Tokens persists sign-in tokens in the KV store, one per provider.
type Tokens struct {
	kv  *kv.TypedKV[StoredToken]
	now func() time.Time
}

func NewTokens(store kv.KV) *Tokens {
	return &Tokens{kv: kv.Scoped[StoredToken](store, "auth"), now: time.Now}
}

// Save stores tok for provider, replacing any earlier token.
func (t *Tokens) Save(ctx context.Context, provider string, tok *oauth2.Token) error {
	return t.kv.Set(ctx, provider, StoredToken{
		Provider:    provider,
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		Expiry:      tok.Expiry,
		SignedInAt:  t.now(),
	})
}

// Load returns the stored token for provider. ok is false when nothing is
// stored or the token has expired.
func (t *Tokens) Load(ctx context.Context, provider string) (StoredToken, bool, error) {
	tok, err := t.kv.Get(ctx, provider)
	if kv.IsMiss(err) {
		return StoredToken{}, false, nil
	}
	if err != nil {
		return StoredToken{}, false, err
	}
	if tok.Expired(t.now()) {
		return tok, false, nil
	}
	return tok, true, nil
}

// Forget removes the stored token for provider.
func (t *Tokens) Forget(ctx context.Context, provider string) error {
	return t.kv.Delete(ctx, provider)
}
