package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information an admin session token encodes
type AdminSessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewAdminSessionToken(expiresIn time.Duration, email string, secretKey string) (tokenString string, err error) {
	claims := AdminSessionClaims{
		email,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateAdminSessionToken(tokenString string, secretKey string) (claims *AdminSessionClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminSessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*AdminSessionClaims)
	valid = valid && token.Valid
	return
}
