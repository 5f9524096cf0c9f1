package identity_usecases

import (
	"context"
	"errors"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/infrastructure/biometric/types"
)

type VerifyResult struct {
	Match       types.MatchResult
	DisplayName string
}

// Verify embeds the image and matches it against the catalog. No spoof gate
// is applied; callers that need one run CheckSpoof first.
func (u *IdentityUseCase) Verify(ctx context.Context, image []byte) (*VerifyResult, error) {
	embedding, err := u.Faces.Embed(ctx, image)
	if err != nil {
		return nil, err
	}
	match, err := u.Catalog.Match(ctx, embedding)
	if err != nil {
		return nil, err
	}
	result := &VerifyResult{Match: match}
	if match.MatchedID == nil {
		return result, nil
	}
	identity, err := u.Catalog.Get(ctx, *match.MatchedID)
	if err != nil {
		// deleted between match and lookup
		if errors.Is(err, apperrors.ErrNotFound) {
			return &VerifyResult{Match: types.MatchResult{Similarity: match.Similarity}}, nil
		}
		return nil, err
	}
	result.DisplayName = identity.DisplayName
	return result, nil
}
