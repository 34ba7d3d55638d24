package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

// DefaultTTL is how long issued tokens stay valid. There is no refresh;
// an expired token forces a fresh login.
const DefaultTTL = 5 * time.Hour

// ErrInvalidToken is returned by Verify for any unusable token:
// malformed, tampered, signed with another key, or expired.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the tenant-scoped identity inside the JWT payload,
// alongside the standard subject and expiry claims.
type Claims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantSlug string `json:"tenant_slug"`
}

// Codec signs and verifies bearer tokens with a single symmetric
// process-wide secret. The secret is injected at construction and never
// changes; rotating it invalidates all outstanding tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec builds a codec. The secret must be non-empty; the caller is
// expected to treat a missing secret as fatal at startup.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue serializes the identity into an HS256-signed JWT expiring after
// the codec's TTL.
func (c *Codec) Issue(id domain.Identity) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: c.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:   strconv.FormatInt(id.UserID, 10),
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(c.ttl)),
	}
	custom := Claims{
		Email:      id.Email,
		Role:       string(id.Role),
		TenantSlug: id.TenantSlug,
	}

	raw, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize token: %w", err)
	}
	return raw, nil
}

// Verify checks signature and expiry and reconstructs the identity. On
// any failure it returns ErrInvalidToken with no partial data.
func (c *Codec) Verify(raw string) (domain.Identity, error) {
	parsed, err := gojwt.ParseSigned(raw, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var std gojwt.Claims
	var custom Claims
	if err := parsed.Claims(c.secret, &std, &custom); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// Zero leeway: an expired token is invalid immediately.
	if err := std.ValidateWithLeeway(gojwt.Expected{Time: time.Now()}, 0); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	role := domain.Role(custom.Role)
	if !role.Valid() || custom.TenantSlug == "" {
		return domain.Identity{}, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}

	return domain.Identity{
		UserID:     userID,
		Email:      custom.Email,
		Role:       role,
		TenantSlug: custom.TenantSlug,
	}, nil
}
