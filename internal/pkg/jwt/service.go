// Package jwt issues and verifies the HS256 tokens used for API sessions and
// for binding a LinkedIn authorization round trip to a user.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const Issuer = "jobpilot"

// TokenType is carried in the audience claim. A token only verifies as the
// type it was issued for.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeState   TokenType = "oauth_state"
)

const defaultStateTTL = 10 * time.Minute

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	TokenType TokenType `json:"token_type"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(userID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (string, error)
	GenerateStateToken(userID uuid.UUID) (string, error)
	// Parse verifies token as want and returns its claims.
	Parse(token string, want TokenType) (Claims, error)
}

type key struct {
	secret []byte
	ttl    time.Duration
}

type HMACService struct {
	keys map[TokenType]key
	now  func() time.Time
}

var _ Service = (*HMACService)(nil)

// NewHMACService signs each token type with its own key. State tokens use a
// key derived from accessSecret.
func NewHMACService(accessSecret, refreshSecret string, accessTTL, refreshTTL, stateTTL time.Duration) *HMACService {
	if stateTTL <= 0 {
		stateTTL = defaultStateTTL
	}
	keys := map[TokenType]key{
		TokenTypeAccess:  {secret: []byte(accessSecret), ttl: accessTTL},
		TokenTypeRefresh: {secret: []byte(refreshSecret), ttl: refreshTTL},
	}
	if accessSecret != "" {
		keys[TokenTypeState] = key{secret: []byte(accessSecret + ":" + string(TokenTypeState)), ttl: stateTTL}
	}
	return &HMACService{keys: keys, now: time.Now}
}

func (s *HMACService) GenerateAccessToken(userID uuid.UUID, email string) (string, error) {
	return s.sign(TokenTypeAccess, userID, email)
}

func (s *HMACService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.sign(TokenTypeRefresh, userID, "")
}

func (s *HMACService) GenerateStateToken(userID uuid.UUID) (string, error) {
	return s.sign(TokenTypeState, userID, "")
}

func (s *HMACService) Parse(token string, want TokenType) (Claims, error) {
	k, ok := s.key(want)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}

	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithAudience(string(want)),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	if _, err := p.ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return k.secret, nil
	}); err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.TokenType != want || c.UserID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}

func (s *HMACService) sign(tt TokenType, userID uuid.UUID, email string) (string, error) {
	k, ok := s.key(tt)
	if !ok {
		return "", fmt.Errorf("%w: no key configured for %s tokens", ErrTokenInvalid, tt)
	}

	now := s.now().UTC()
	c := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tt,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.String(),
			Audience:  jwtlib.ClaimStrings{string(tt)},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(k.ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString(k.secret)
}

func (s *HMACService) key(tt TokenType) (key, bool) {
	k, ok := s.keys[tt]
	if !ok || len(k.secret) == 0 || k.ttl <= 0 {
		return key{}, false
	}
	return k, true
}
