package infrastructure

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenSubject = errors.New("token subject is not a user id")

// TokenService issues and verifies the HMAC-signed bearer tokens clients pass
// as the ?token= handshake parameter. The subject claim carries the user id.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewTokenService(secret string, algorithm string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("empty token secret")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return &TokenService{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

func (s *TokenService) Issue(userID int64, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Verify(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrTokenSubject, claims.Subject)
	}
	return userID, nil
}
