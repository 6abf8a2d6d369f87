// Package auth mints and verifies the guest session tokens the board
// hands out. Identity itself comes from the fronting proxy; the token
// just lets a client keep acting as the same identifier without
// resending the header.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

const tokenTTL = 72 * time.Hour

// GenerateToken signs a guest token for a resolved identifier.
func GenerateToken(identifier string, userID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"identifier": identifier,
		"user_id":    userID,
		"exp":        time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies a guest token and returns the identifier it was
// minted for.
func ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	identifier, _ := claims["identifier"].(string)
	if identifier == "" {
		return "", fmt.Errorf("token has no identifier")
	}
	return identifier, nil
}
