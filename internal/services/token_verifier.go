package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const firebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified bearer token says about its holder.
type Identity struct {
	UID   string
	Email string
}

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Identity, error)
}

type firebaseClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type firebaseVerifier struct {
	projectID string
	jwks      *jwksCache
	leeway    time.Duration
}

// NewFirebaseVerifier checks Firebase ID tokens: RS256 signed by the securetoken keys,
// issued by https://securetoken.google.com/<project> for audience <project>.
func NewFirebaseVerifier(httpClient *http.Client, projectID string) (TokenVerifier, error) {
	v, err := newFirebaseVerifier(httpClient, projectID, firebaseJWKSURL)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func newFirebaseVerifier(httpClient *http.Client, projectID, jwksURL string) (*firebaseVerifier, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	return &firebaseVerifier{
		projectID: projectID,
		jwks:      newJWKSCache(httpClient, jwksURL),
		leeway:    30 * time.Second,
	}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	)
	var claims firebaseClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}

type hmacVerifier struct {
	secret []byte
	issuer string
}

// NewHMACVerifier accepts HS256 tokens signed with secret. Used for local development and tests.
func NewHMACVerifier(secret, issuer string) (TokenVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return &hmacVerifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *hmacVerifier) Verify(_ context.Context, raw string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims firebaseClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return &Identity{UID: claims.Subject, Email: claims.Email}, nil
}

// IssueHMACToken mints a token NewHMACVerifier accepts.
func IssueHMACToken(secret, issuer, uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := firebaseClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
