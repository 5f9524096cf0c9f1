package auth

import "github.com/golang-jwt/jwt/v4"

type ClaimsData struct {
	OperatorID string `json:"operatorID"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}
