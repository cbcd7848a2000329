package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"campaignhub/internal/domain"
)

const (
	TypeSession       = "session"
	TypePasswordReset = "password_reset"

	DefaultResetTTL = time.Hour
)

var (
	ErrTokenExpired   = fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	ErrTokenInvalid   = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	ErrTokenWrongType = fmt.Errorf("%w: wrong token type", domain.ErrUnauthorized)
)

var supportedAlgorithms = map[string]*jwtlib.SigningMethodHMAC{
	"HS256": jwtlib.SigningMethodHS256,
	"HS384": jwtlib.SigningMethodHS384,
	"HS512": jwtlib.SigningMethodHS512,
}

type Service struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	method   *jwtlib.SigningMethodHMAC
	issuer   string
	now      func() time.Time
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	jwtlib.RegisteredClaims
}

type Option func(*Service)

func WithAlgorithm(alg string) Option {
	return func(s *Service) {
		if m, ok := supportedAlgorithms[alg]; ok {
			s.method = m
		}
	}
}

func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

// WithClock overrides the time source, used by tests to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: DefaultResetTTL,
		method:   jwtlib.SigningMethodHS256,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SupportedAlgorithm reports whether alg can be passed to WithAlgorithm.
func SupportedAlgorithm(alg string) bool {
	_, ok := supportedAlgorithms[alg]
	return ok
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) ResetTTL() time.Duration { return s.resetTTL }

func (s *Service) IssueSessionToken(userID, username, role string) (string, error) {
	return s.issue(Claims{UserID: userID, Username: username, Role: role, Type: TypeSession}, s.ttl)
}

func (s *Service) IssuePasswordResetToken(userID string) (string, error) {
	return s.issue(Claims{UserID: userID, Type: TypePasswordReset}, s.resetTTL)
}

func (s *Service) ParseSessionToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, TypeSession)
}

func (s *Service) ParsePasswordResetToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, TypePasswordReset)
}

func (s *Service) issue(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwtlib.NewNumericDate(now),
	}

	token := jwtlib.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parse(tokenStr, wantType string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwtlib.WithValidMethods([]string{s.method.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	if claims.Type != wantType {
		return nil, ErrTokenWrongType
	}

	return claims, nil
}
