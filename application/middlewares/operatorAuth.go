package middlewares

import (
	"strings"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/interfaces"
	"rollcall.io/application/utils"
	"rollcall.io/infrastructure/auth"
)

func bearerToken(ctx *interfaces.ApplicationContext[any]) (string, bool) {
	header := ctx.GetHeader("Authorization")
	if header == nil {
		return "", false
	}
	token, found := strings.CutPrefix(*header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func setOperator(ctx *interfaces.ApplicationContext[any], claims *auth.ClaimsData) {
	ctx.SetContextData("OperatorID", claims.OperatorID)
	ctx.SetContextData("OperatorEmail", claims.Email)
	ctx.SetContextData("OperatorRole", claims.Role)
}

// OperatorAuthenticationMiddleware requires a valid bearer token and, when
// roles is non empty, one of those roles.
func OperatorAuthenticationMiddleware(ctx *interfaces.ApplicationContext[any], tokens *auth.TokenIssuer, roles []string) (*interfaces.ApplicationContext[any], bool) {
	token, ok := bearerToken(ctx)
	if !ok {
		apperrors.AuthenticationError(ctx.Ctx, "bearer token missing")
		return nil, false
	}
	claims, err := tokens.DecodeAuthToken(token)
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "session expired, sign in again")
		return nil, false
	}
	if len(roles) > 0 && !utils.HasItemString(&roles, claims.Role) {
		apperrors.AuthorizationError(ctx.Ctx, "you are not allowed to perform this action")
		return nil, false
	}
	setOperator(ctx, claims)
	return ctx, true
}

// OptionalOperatorMiddleware attaches the operator when a valid token is sent
// and lets anonymous requests through untouched.
func OptionalOperatorMiddleware(ctx *interfaces.ApplicationContext[any], tokens *auth.TokenIssuer) (*interfaces.ApplicationContext[any], bool) {
	token, ok := bearerToken(ctx)
	if !ok {
		return ctx, true
	}
	claims, err := tokens.DecodeAuthToken(token)
	if err != nil {
		apperrors.AuthenticationError(ctx.Ctx, "session expired, sign in again")
		return nil, false
	}
	setOperator(ctx, claims)
	return ctx, true
}
