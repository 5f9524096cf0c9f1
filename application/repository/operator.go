package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/database/connection/datastore"
	"rollcall.io/infrastructure/database/repository/mongo"
)

var operatorOnce = sync.Once{}

var operatorRepository mongo.MongoRepository[entities.Operator]

func OperatorRepo() *mongo.MongoRepository[entities.Operator] {
	operatorOnce.Do(func() {
		operatorRepository = mongo.MongoRepository[entities.Operator]{Model: datastore.OperatorModel}
	})
	return &operatorRepository
}

// OperatorStore adapts the operator collection to the auth use case.
type OperatorStore struct {
	Repo *mongo.MongoRepository[entities.Operator]
}

func (s OperatorStore) Create(ctx context.Context, operator entities.Operator) (*entities.Operator, error) {
	return s.Repo.CreateOne(ctx, operator)
}

func (s OperatorStore) FindByEmail(ctx context.Context, email string) (*entities.Operator, error) {
	return s.Repo.FindOneByFilter(ctx, bson.M{"email": email})
}

func (s OperatorStore) Count(ctx context.Context) (int64, error) {
	return s.Repo.CountDocs(ctx, bson.M{})
}
