// Package auth is the authentication collaborator: it checks passwords and
// issues and verifies the JWTs that carry an account id between requests.
// It never decides what an account may do.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"task-management/internal/apperror"
	"task-management/internal/models"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims is the payload of every token. Session is shared by the access and
// refresh tokens of one login, including access tokens issued by Refresh.
type Claims struct {
	AccountID int64       `json:"user_id"`
	Role      models.Role `json:"role"`
	Type      TokenType   `json:"typ"`
	Session   string      `json:"sid"`
	jwt.RegisteredClaims
}

func sessionKey(sid string) string { return "session:" + sid }

// Denylist remembers revoked token ids until they expire.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenPair is returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	denylist   Denylist
}

// NewTokenService creates a TokenService. denylist may be nil, in which case
// tokens cannot be revoked before they expire.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, denylist Denylist) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		denylist:   denylist,
	}
}

var errInvalidToken = apperror.New(apperror.Unauthenticated, "Invalid token")

// Issue creates an access and a refresh token for a, both bound to a new
// session.
func (s *TokenService) Issue(a *models.Account) (TokenPair, error) {
	sid := uuid.NewString()
	access, err := s.sign(a.ID, a.Role, sid, AccessToken, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(a.ID, a.Role, sid, RefreshToken, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Parse(ctx, refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	return s.sign(claims.AccountID, claims.Role, claims.Session, AccessToken, s.accessTTL)
}

func (s *TokenService) sign(id int64, role models.Role, sid string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: id,
		Role:      role,
		Type:      typ,
		Session:   sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse verifies tokenStr and checks that it is of type want and has not
// been revoked.
func (s *TokenService) Parse(ctx context.Context, tokenStr string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Type != want || claims.AccountID == 0 {
		return nil, errInvalidToken
	}
	if s.denylist == nil {
		return claims, nil
	}
	for _, key := range revocationKeys(claims) {
		revoked, err := s.denylist.IsRevoked(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, apperror.New(apperror.Unauthenticated, "Token has been revoked")
		}
	}
	return claims, nil
}

func revocationKeys(claims *Claims) []string {
	var keys []string
	if claims.ID != "" {
		keys = append(keys, claims.ID)
	}
	if claims.Session != "" {
		keys = append(keys, sessionKey(claims.Session))
	}
	return keys
}

// Revoke ends the session of the token described by claims: every access
// and refresh token of that login stops working. Tokens without a session
// are revoked on their own until they expire.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.denylist == nil || claims == nil {
		return nil
	}
	if claims.Session != "" {
		// refresh token terakhir dari sesi ini expired paling lambat refreshTTL dari sekarang
		return s.denylist.Revoke(ctx, sessionKey(claims.Session), time.Now().Add(s.refreshTTL))
	}
	if claims.ID == "" {
		return nil
	}
	until := time.Now().Add(s.refreshTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.denylist.Revoke(ctx, claims.ID, until)
}
