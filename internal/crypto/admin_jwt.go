package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTIssuer is the issuer claim of every admin token
const JWTIssuer = "cardioshield"

// AdminClaims represents JWT claims for admin authentication
type AdminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateAdminJWT signs an HS256 admin token valid for lifetime
func GenerateAdminJWT(email string, jwtSecretBase64 string, lifetime time.Duration) (token string, expiresAt time.Time, err error) {
	if email == "" {
		return "", time.Time{}, fmt.Errorf("email is required")
	}
	secret, err := decodeSecret(jwtSecretBase64)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt = now.Add(lifetime)

	claims := AdminClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    JWTIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}

	return token, expiresAt, nil
}

// VerifyAdminJWT checks signature, algorithm, issuer and expiry
func VerifyAdminJWT(tokenString string, jwtSecretBase64 string) (*AdminClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is required")
	}
	secret, err := decodeSecret(jwtSecretBase64)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(JWTIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// HashToken returns the hex SHA-256 of a token for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func decodeSecret(jwtSecretBase64 string) ([]byte, error) {
	if jwtSecretBase64 == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	secret, err := base64.StdEncoding.DecodeString(jwtSecretBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT secret: %w", err)
	}
	return secret, nil
}
