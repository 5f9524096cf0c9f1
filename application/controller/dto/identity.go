package dto

// EnrollIdentityDTO is bound from the multipart form that carries the image.
type EnrollIdentityDTO struct {
	Name  string `form:"name" validate:"required,display_name,max=120"`
	ID    string `form:"id" validate:"required,identity_key,max=64"`
	Image []byte `json:"image" form:"-" validate:"required"`
}

type VerifyIdentityDTO struct {
	Image []byte `json:"image" form:"-" validate:"required"`
}

type IdentityIDDTO struct {
	ID string `uri:"id" validate:"required,identity_key"`
}

type IdentityProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Image       string `json:"image,omitempty"`
	ImageType   string `json:"imageType,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}
