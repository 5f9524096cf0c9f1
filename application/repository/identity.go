package repository

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/utils"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/database/connection/datastore"
	"rollcall.io/infrastructure/database/repository/mongo"
)

var identityOnce = sync.Once{}

var identityRepository mongo.MongoRepository[entities.EnrolledIdentity]

func IdentityRepo() *mongo.MongoRepository[entities.EnrolledIdentity] {
	identityOnce.Do(func() {
		identityRepository = mongo.MongoRepository[entities.EnrolledIdentity]{Model: datastore.IdentityModel}
	})
	return &identityRepository
}

// IdentityStore adapts the identity collection to the catalog's store.
type IdentityStore struct {
	Repo *mongo.MongoRepository[entities.EnrolledIdentity]
}

func (s IdentityStore) All(ctx context.Context) ([]entities.EnrolledIdentity, error) {
	var projection interface{} = bson.M{"imageData": 0}
	var sort interface{} = bson.D{{Key: "createdAt", Value: 1}}
	return s.Repo.FindMany(ctx, bson.M{}, &mongo.FindOptions{Projection: &projection, Sort: &sort})
}

func (s IdentityStore) Get(ctx context.Context, id string) (*entities.EnrolledIdentity, error) {
	return s.Repo.FindByID(ctx, id)
}

// Upsert fully replaces the identity, keeping its original creation time.
func (s IdentityStore) Upsert(ctx context.Context, identity entities.EnrolledIdentity) (*entities.EnrolledIdentity, error) {
	id := utils.NormalizeID(identity.ID)
	existing, err := s.Repo.FindByID(ctx, id, options.FindOne().SetProjection(bson.M{"createdAt": 1}))
	if err == nil {
		identity.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return s.Repo.ReplaceOne(ctx, bson.M{"_id": id}, identity)
}

func (s IdentityStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.Repo.DeleteByID(ctx, id)
}
