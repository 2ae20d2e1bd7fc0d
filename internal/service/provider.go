package service

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taman-digital/internal/repository"
)

// GoogleCertsURL publishes the keys Google signs ID tokens with.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

const (
	googleKeysTTL      = time.Hour
	googleRefetchAfter = time.Minute
	googleFetchTimeout = 10 * time.Second
)

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// ProviderVerifier checks a sign-in credential issued by an external provider
// and returns the identity it asserts.
type ProviderVerifier interface {
	Verify(ctx context.Context, credential string) (*repository.ProviderProfile, error)
}

// GoogleOption configures a GoogleVerifier.
type GoogleOption func(*GoogleVerifier)

// WithCertsURL overrides where signing keys are fetched from.
func WithCertsURL(url string) GoogleOption {
	return func(v *GoogleVerifier) { v.certsURL = url }
}

// WithVerifierClock overrides the clock used for expiry checks.
func WithVerifierClock(now func() time.Time) GoogleOption {
	return func(v *GoogleVerifier) { v.now = now }
}

// GoogleVerifier implements ProviderVerifier for Google ID tokens issued to
// one OAuth client.
type GoogleVerifier struct {
	clientID string
	certsURL string
	client   *http.Client
	now      func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// NewGoogleVerifier creates a verifier for tokens whose audience is clientID.
// It returns ErrProviderUnavailable when clientID is empty.
func NewGoogleVerifier(clientID string, opts ...GoogleOption) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, ErrProviderUnavailable
	}
	v := &GoogleVerifier{
		clientID: clientID,
		certsURL: GoogleCertsURL,
		client:   &http.Client{Timeout: googleFetchTimeout},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// Verify checks the signature, audience, issuer and expiry of credential.
// Tokens without a verified email are rejected.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*repository.ProviderProfile, error) {
	var claims googleClaims
	_, err := jwt.ParseWithClaims(credential, &claims,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			return v.key(ctx, kid)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	switch {
	case errors.Is(err, ErrProviderUnavailable):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if !slices.Contains(googleIssuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidCredentials, claims.Issuer)
	}
	if claims.Subject == "" || claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidCredentials)
	}
	return &repository.ProviderProfile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// key returns the signing key kid, refetching the key set when it is stale
// or does not know kid.
func (v *GoogleVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	age := v.now().Sub(v.fetched)
	if k, ok := v.keys[kid]; ok && age < googleKeysTTL {
		return k, nil
	}
	if v.keys != nil && age < googleRefetchAfter {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	keys, err := v.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: signing keys: %v", ErrProviderUnavailable, err)
	}
	v.keys, v.fetched = keys, v.now()

	k, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return k, nil
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *GoogleVerifier) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", v.certsURL, resp.StatusCode)
	}

	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(jwk.N)
		if err != nil {
			return nil, fmt.Errorf("decode key %s: %w", jwk.Kid, err)
		}
		e, err := base64.RawURLEncoding.DecodeString(jwk.E)
		if err != nil {
			return nil, fmt.Errorf("decode key %s: %w", jwk.Kid, err)
		}
		keys[jwk.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}
	return keys, nil
}
