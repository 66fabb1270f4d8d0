package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned when a token fails signature or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims carried by both token kinds.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies access and refresh tokens. The two kinds
// are signed with distinct secrets, so a token of one kind can never be
// presented as the other.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTService creates a new JWT service.
func NewJWTService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken generates a short-lived access token for the user.
func (s *JWTService) GenerateAccessToken(userID string) (string, error) {
	return s.generate(userID, s.accessSecret, s.accessExpiry)
}

// GenerateRefreshToken generates a longer-lived refresh token for the user.
func (s *JWTService) GenerateRefreshToken(userID string) (string, error) {
	return s.generate(userID, s.refreshSecret, s.refreshExpiry)
}

func (s *JWTService) generate(userID string, secret []byte, expiry time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken validates an access token and returns the user id.
func (s *JWTService) VerifyAccessToken(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, s.accessSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// VerifyRefreshToken validates a refresh token and returns the user id.
func (s *JWTService) VerifyRefreshToken(tokenString string) (string, error) {
	claims, err := s.verify(tokenString, s.refreshSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// AccessTokenExpiry returns the expiry time of a valid access token, used to
// bound the revocation TTL at logout.
func (s *JWTService) AccessTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := s.verify(tokenString, s.accessSecret)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

func (s *JWTService) verify(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
