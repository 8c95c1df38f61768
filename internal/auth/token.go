package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "department-service"

// Principal holds identity extracted from a validated session token.
type Principal struct {
	UserID      int64
	MedicalCode string
	Name        string
	Role        string
}

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingSub   = errors.New("missing sub claim")
)

// Verifier issues and validates HS256 session tokens. The dashboard
// logs staff in by medical code; the token carries who they are so
// later requests don't repeat the lookup.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifier constructs a verifier with the shared signing secret.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// IssueToken creates a signed session token for the principal.
func (v *Verifier) IssueToken(pr Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  issuer,
		"sub":  fmt.Sprintf("%d", pr.UserID),
		"code": pr.MedicalCode,
		"name": pr.Name,
		"role": pr.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(v.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAndVerifyToken verifies a bearer token, validates issuer/exp
// and returns the Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}
	tokenString = strings.TrimSpace(tokenString)

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		// enforce HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != issuer {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSub
	}
	var userID int64
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil {
		return nil, ErrInvalidToken
	}

	pr := &Principal{UserID: userID}
	pr.MedicalCode, _ = claims["code"].(string)
	pr.Name, _ = claims["name"].(string)
	pr.Role, _ = claims["role"].(string)

	return pr, nil
}
