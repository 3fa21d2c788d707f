package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dtroode/townforge-client/internal/model"
)

// Claims represents JWT claims carried by session and verification tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"typ,omitempty"`
}

// JWT issues and validates HMAC tokens for the offline auth provider.
type JWT struct {
	secretKey string
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: secretKey, now: time.Now}
}

const (
	sessionTTL      = 24 * time.Hour
	verificationTTL = 24 * time.Hour
	typeSession     = "session"
	typeVerify      = "verify"
)

// GenerateSessionToken creates a bearer token for user.
func (j *JWT) GenerateSessionToken(user model.User) (string, error) {
	now := j.now()
	tokenString, err := j.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
		Email:     user.Email,
		Name:      user.Name,
		TokenType: typeSession,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// GenerateVerificationToken creates the token mailed to a new account.
func (j *JWT) GenerateVerificationToken(email, name string) (string, error) {
	now := j.now()
	tokenString, err := j.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(verificationTTL)),
		},
		Email:     email,
		Name:      name,
		TokenType: typeVerify,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign verification token: %w", err)
	}
	return tokenString, nil
}

// ParseSessionToken validates a session token and returns the user it names.
func (j *JWT) ParseSessionToken(tokenString string) (model.User, error) {
	claims, err := j.parse(tokenString, typeSession)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	return model.User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// ParseVerificationToken validates a verification token and returns the registered email and name.
func (j *JWT) ParseVerificationToken(tokenString string) (string, string, error) {
	claims, err := j.parse(tokenString, typeVerify)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse verification token: %w", err)
	}
	return claims.Email, claims.Name, nil
}

// Inspect decodes claims without verifying the signature. The client does not
// hold server keys, so this is for display only.
func Inspect(tokenString string) (Claims, error) {
	claims := Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

func (j *JWT) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
}

func (j *JWT) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims, nil
}
