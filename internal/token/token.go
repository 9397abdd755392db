package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenType distinguishes short-lived connection tokens from the longer
// session tokens that gate the request/response endpoints.
type TokenType string

const (
	ConnectToken TokenType = "connect"
	SessionToken TokenType = "session"
)

const issuer = "marketchat-backend"

// Claims carried by every token minted here.
type Claims struct {
	UserID    string    `json:"userId"`
	TokenType TokenType `json:"tokenType"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 tokens. Verification is stateless; expiry
// is the only invalidation mechanism.
type Service struct {
	secret     []byte
	connectTTL time.Duration
	sessionTTL time.Duration
}

// NewService creates a token service. The secret must be non-empty; config
// validation refuses to start the process otherwise.
func NewService(secret string, connectTTL, sessionTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		connectTTL: connectTTL,
		sessionTTL: sessionTTL,
	}
}

// IssueConnectToken mints a token authorizing exactly one connection
// handshake for userID. Callers must already hold a valid session.
func (s *Service) IssueConnectToken(userID string) (string, error) {
	return s.issue(userID, ConnectToken, s.connectTTL)
}

// IssueSessionToken mints a session token for userID. Session issuance is
// owned upstream; this exists for verification symmetry and tests.
func (s *Service) IssueSessionToken(userID string) (string, error) {
	return s.issue(userID, SessionToken, s.sessionTTL)
}

func (s *Service) issue(userID string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyConnectToken validates a connection token and returns the user it
// was minted for.
func (s *Service) VerifyConnectToken(tokenString string) (string, error) {
	return s.verify(tokenString, ConnectToken)
}

// VerifySessionToken validates a session token and returns the user id.
func (s *Service) VerifySessionToken(tokenString string) (string, error) {
	return s.verify(tokenString, SessionToken)
}

func (s *Service) verify(tokenString string, typ TokenType) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !parsed.Valid || claims.TokenType != typ || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}
