package controller

import (
	"net/http"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller/dto"
	"rollcall.io/application/interfaces"
	server_response "rollcall.io/infrastructure/serverResponse"
	"rollcall.io/infrastructure/validator"
)

// RegisterOperator is open while no operator exists. After that only an
// admin may add accounts.
func (c *Controller) RegisterOperator(ctx *interfaces.ApplicationContext[dto.RegisterOperatorDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	bootstrapping, err := c.Operators.Bootstrapping(ctx.Context())
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("register", ctx.RequestID, err))
		return
	}
	if !bootstrapping {
		if ctx.GetStringContextData("OperatorID") == "" {
			apperrors.AuthenticationError(ctx.Ctx, "sign in as an admin to add operators")
			return
		}
		if ctx.GetStringContextData("OperatorRole") != "admin" {
			apperrors.AuthorizationError(ctx.Ctx, "only admins can add operators")
			return
		}
	}
	role := ctx.Body.Role
	if role == "" {
		role = "operator"
	}
	operator, err := c.Operators.Register(ctx.Context(), ctx.Body.Name, ctx.Body.Email, ctx.Body.Password, role)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("register", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "operator created", operator, nil, nil)
}

func (c *Controller) Login(ctx *interfaces.ApplicationContext[dto.LoginDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	token, operator, err := c.Operators.Login(ctx.Context(), ctx.Body.Email, ctx.Body.Password)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("login", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "signed in", map[string]any{
		"token":    token,
		"operator": operator,
	}, nil, nil)
}
