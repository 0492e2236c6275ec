package token

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
)

// RoleAdmin marks tokens allowed to manage raffles and purchases.
const RoleAdmin = "admin"

// Service handles JWT generation and validation for the admin API.
type Service struct {
	signingKey []byte
	issuer     string
	authClient *auth.Client
}

// Claims represents JWT claims for admin tokens
type Claims struct {
	UserID string   `json:"uid"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// New creates a new token service. authClient may be nil when Firebase
// ID token exchange is not needed (tests, emulator-less setups).
func New(signingKey string, issuer string, authClient *auth.Client) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		authClient: authClient,
	}
}

// GenerateToken creates a JWT token for an authenticated user
func (s *Service) GenerateToken(userID, email string, roles []string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// ValidateFirebaseToken verifies a Firebase ID token so admins can
// exchange their Firebase session for an API token.
func (s *Service) ValidateFirebaseToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if s.authClient == nil {
		return nil, fmt.Errorf("firebase auth is not configured")
	}
	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid Firebase token: %w", err)
	}
	return token, nil
}
