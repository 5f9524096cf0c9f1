package auth_usecases

import (
	"context"
	"errors"
	"strings"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/auth"
	"rollcall.io/infrastructure/cryptography"
	"rollcall.io/infrastructure/logger"
)

type OperatorStore interface {
	Create(ctx context.Context, operator entities.Operator) (*entities.Operator, error)
	FindByEmail(ctx context.Context, email string) (*entities.Operator, error)
	Count(ctx context.Context) (int64, error)
}

type OperatorUseCase struct {
	Store  OperatorStore
	Hasher cryptography.Hasher
	Tokens *auth.TokenIssuer
}

// Register creates an operator account. The very first account is always an
// admin so a fresh deployment can bootstrap itself.
func (u *OperatorUseCase) Register(ctx context.Context, name string, email string, password string, role string) (*entities.Operator, error) {
	count, err := u.Store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		role = "admin"
	}
	hashed, err := u.Hasher.HashString(password, nil)
	if err != nil {
		return nil, err
	}
	operator, err := u.Store.Create(ctx, entities.Operator{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hashed),
		Role:     role,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("operator registered", logger.LoggerOptions{
		Key:  "operatorID",
		Data: operator.ID,
	})
	return operator, nil
}

// Bootstrapping reports whether no operator exists yet.
func (u *OperatorUseCase) Bootstrapping(ctx context.Context) (bool, error) {
	count, err := u.Store.Count(ctx)
	return count == 0, err
}

// Login returns a signed token. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (u *OperatorUseCase) Login(ctx context.Context, email string, password string) (*string, *entities.Operator, error) {
	operator, err := u.Store.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !u.Hasher.VerifyHashData(operator.Password, password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	token, err := u.Tokens.GenerateAuthToken(auth.ClaimsData{
		OperatorID: operator.ID,
		Email:      operator.Email,
		Name:       operator.Name,
		Role:       operator.Role,
	})
	if err != nil {
		return nil, nil, err
	}
	return token, operator, nil
}
