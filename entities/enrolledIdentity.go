package entities

import (
	"time"

	"rollcall.io/application/utils"
)

// EnrolledIdentity is one person in the face catalog. ID is the normalized roll
// number and doubles as the document key, so re-enrollment replaces in place.
type EnrolledIdentity struct {
	ID          string    `bson:"_id" json:"id"`
	DisplayName string    `bson:"name" json:"name"`
	Embedding   []float32 `bson:"embedding" json:"-"`
	ImageData   []byte    `bson:"imageData,omitempty" json:"-"`
	ImageType   string    `bson:"imageType,omitempty" json:"imageType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model EnrolledIdentity) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.ID = utils.NormalizeID(model.ID)
	model.DisplayName = utils.NormalizeName(model.DisplayName)
	model.UpdatedAt = now
	return &model
}

// Clone returns a deep copy so callers never alias the catalog's vector.
func (model EnrolledIdentity) Clone() EnrolledIdentity {
	out := model
	if model.Embedding != nil {
		out.Embedding = append([]float32(nil), model.Embedding...)
	}
	if model.ImageData != nil {
		out.ImageData = append([]byte(nil), model.ImageData...)
	}
	return out
}
