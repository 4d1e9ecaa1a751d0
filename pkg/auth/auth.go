package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Actor identifies who is performing an operation. Every mutating operation
// takes an explicit Actor; no ambient "current user" is read implicitly.
type Actor struct {
	UserID      uint
	Username    string
	CompanyID   uint
	Permissions []string
}

// Authorizer is the gate consulted before every mutating operation
type Authorizer interface {
	CanPerform(actor Actor, permission string) bool
}

// ClaimsAuthorizer grants a capability when the actor's claim set carries its key
type ClaimsAuthorizer struct{}

func NewClaimsAuthorizer() *ClaimsAuthorizer {
	return &ClaimsAuthorizer{}
}

func (a *ClaimsAuthorizer) CanPerform(actor Actor, permission string) bool {
	for _, p := range actor.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Claims is the JWT payload carried between the gateway and the service
type Claims struct {
	UserID      uint     `json:"user_id"`
	Username    string   `json:"username"`
	CompanyID   uint     `json:"company_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Actor converts validated claims into an actor context
func (c *Claims) Actor() Actor {
	return Actor{
		UserID:      c.UserID,
		Username:    c.Username,
		CompanyID:   c.CompanyID,
		Permissions: c.Permissions,
	}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT for the given identity
func GenerateToken(userID uint, username string, companyID uint, role string, permissions []string) (string, error) {
	claims := &Claims{
		UserID:      userID,
		Username:    username,
		CompanyID:   companyID,
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "cmms-inventory",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ValidateToken parses and validates a JWT, returning its claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
