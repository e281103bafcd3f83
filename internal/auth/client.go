package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	PermissionReindex = "search:reindex"
	PermissionWrite   = "content:write"
)

var (
	ErrMissingSecret = errors.New("service token secret is not configured")
	ErrInvalidToken  = errors.New("invalid service token")
	ErrForbidden     = errors.New("service token lacks permission")
)

type Config struct {
	ServiceName   string
	ServiceSecret string
	TokenTTL      time.Duration
}

// ServiceToken is the claim set carried in X-Service-Token.
type ServiceToken struct {
	ServiceName string   `json:"service_name"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

func (st *ServiceToken) HasPermission(permission string) bool {
	return slices.Contains(st.Permissions, permission)
}

type Client struct {
	config Config
	now    func() time.Time
}

func NewClient(config Config) *Client {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 5 * time.Minute
	}
	return &Client{config: config, now: time.Now}
}

// GenerateServiceToken signs a short-lived HS256 token for calls to internal routes.
func (c *Client) GenerateServiceToken(permissions ...string) (string, error) {
	if c.config.ServiceSecret == "" {
		return "", ErrMissingSecret
	}

	now := c.now()
	claims := ServiceToken{
		ServiceName: c.config.ServiceName,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   c.config.ServiceName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(c.config.ServiceSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateServiceToken checks signature, algorithm and expiry.
func (c *Client) ValidateServiceToken(tokenString string) (*ServiceToken, error) {
	if c.config.ServiceSecret == "" {
		return nil, ErrMissingSecret
	}

	claims := &ServiceToken{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.config.ServiceSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ServiceName == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
