package identity_usecases

import (
	"context"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/utils"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
)

type FaceAnalyzer interface {
	Embed(ctx context.Context, data []byte) ([]float32, error)
	CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error)
}

type IdentityCatalog interface {
	Match(ctx context.Context, query []float32) (types.MatchResult, error)
	Get(ctx context.Context, id string) (entities.EnrolledIdentity, error)
	Profile(ctx context.Context, id string) (*entities.EnrolledIdentity, error)
	Enroll(ctx context.Context, identity entities.EnrolledIdentity) (entities.EnrolledIdentity, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type IdentityUseCase struct {
	Faces             FaceAnalyzer
	Catalog           IdentityCatalog
	RequireSpoofCheck bool
}

type EnrollStatus string

const (
	Enrolled         EnrollStatus = "enrolled"
	EnrollSpoof      EnrollStatus = "spoof"
	EnrollUnverified EnrollStatus = "unverifiable"
)

type EnrollResult struct {
	Status   EnrollStatus
	Identity *entities.EnrolledIdentity
	Verdict  *types.SpoofVerdict
}

// Enroll registers or fully replaces an identity. When the spoof gate is on,
// only an image judged real is embedded.
func (u *IdentityUseCase) Enroll(ctx context.Context, name string, id string, image []byte) (*EnrollResult, error) {
	contentType, ok := biometric.DetectImageType(image)
	if !ok {
		return nil, apperrors.ErrInvalidImage
	}

	result := &EnrollResult{}
	if u.RequireSpoofCheck {
		verdict, err := u.Faces.CheckSpoof(ctx, image)
		if err != nil {
			return nil, err
		}
		result.Verdict = &verdict
		switch verdict.Overall {
		case types.SpoofLabelNoFace:
			return nil, apperrors.ErrNoFaceDetected
		case types.SpoofLabelSpoof:
			result.Status = EnrollSpoof
			return result, nil
		case types.SpoofLabelUnknown:
			result.Status = EnrollUnverified
			return result, nil
		}
	}

	embedding, err := u.Faces.Embed(ctx, image)
	if err != nil {
		return nil, err
	}
	identity, err := u.Catalog.Enroll(ctx, entities.EnrolledIdentity{
		ID:          id,
		DisplayName: utils.NormalizeName(name),
		Embedding:   embedding,
		ImageData:   image,
		ImageType:   contentType,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("identity enrolled", logger.LoggerOptions{
		Key:  "id",
		Data: identity.ID,
	})
	result.Status = Enrolled
	result.Identity = &identity
	return result, nil
}

func (u *IdentityUseCase) Profile(ctx context.Context, id string) (*entities.EnrolledIdentity, error) {
	return u.Catalog.Profile(ctx, id)
}

func (u *IdentityUseCase) Delete(ctx context.Context, id string) (bool, error) {
	return u.Catalog.Delete(ctx, id)
}

func (u *IdentityUseCase) Count(ctx context.Context) (int, error) {
	return u.Catalog.Count(ctx)
}
