package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"rollcall.io/infrastructure/logger"
)

var ErrInvalidToken = errors.New("invalid token used")

// TokenIssuer signs and checks operator bearer tokens with HS256.
type TokenIssuer struct {
	SigningKey []byte
	Issuer     string
	TTL        time.Duration
	Now        func() time.Time
}

func (ti *TokenIssuer) GenerateAuthToken(claimsData ClaimsData) (*string, error) {
	if len(ti.SigningKey) == 0 {
		return nil, errors.New("jwt signing key is not configured")
	}
	now := ti.now()
	claimsData.Issuer = ti.Issuer
	claimsData.Subject = claimsData.OperatorID
	claimsData.IssuedAt = jwt.NewNumericDate(now)
	claimsData.ExpiresAt = jwt.NewNumericDate(now.Add(ti.TTL))

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsData).SignedString(ti.SigningKey)
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

func (ti *TokenIssuer) DecodeAuthToken(tokenString string) (*ClaimsData, error) {
	claims := &ClaimsData{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.SigningKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidToken
		}
		logger.Info("error decoding jwt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Issuer != ti.Issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (ti *TokenIssuer) now() time.Time {
	if ti.Now == nil {
		return time.Now()
	}
	return ti.Now()
}
