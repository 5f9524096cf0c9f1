package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/infrastructure/logger"
)

// CreateOne inserts payload after running it through ParseModel.
// A duplicate key is reported as ErrAlreadyExists.
func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.InsertOne(ctx, parsed)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrAlreadyExists
		}
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, apperrors.StoreError("CreateOne", err)
	}
	return parsed, nil
}

// ReplaceOne upserts payload under filter, replacing any existing document.
func (repo *MongoRepository[T]) ReplaceOne(ctx context.Context, filter interface{}, payload T) (*T, error) {
	parsed := payload.ParseModel().(*T)
	_, err := repo.Model.ReplaceOne(ctx, filter, parsed, options.Replace().SetUpsert(true))
	if err != nil {
		logger.Error("mongo error occured while running ReplaceOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, apperrors.StoreError("ReplaceOne", err)
	}
	return parsed, nil
}

// FindOneByFilter returns ErrNotFound when nothing matches.
func (repo *MongoRepository[T]) FindOneByFilter(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var result T
	err := repo.Model.FindOne(ctx, filter, opts...).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		logger.Error("mongo error occured while running FindOneByFilter", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, apperrors.StoreError("FindOneByFilter", err)
	}
	return &result, nil
}

func (repo *MongoRepository[T]) FindByID(ctx context.Context, id string, opts ...*options.FindOneOptions) (*T, error) {
	return repo.FindOneByFilter(ctx, bson.M{"_id": id}, opts...)
}

func (repo *MongoRepository[T]) FindMany(ctx context.Context, filter interface{}, opts *FindOptions) ([]T, error) {
	findOpts := options.Find()
	if opts != nil {
		if opts.Projection != nil {
			findOpts.SetProjection(*opts.Projection)
		}
		if opts.Sort != nil {
			findOpts.SetSort(*opts.Sort)
		}
		if opts.Skip != nil {
			findOpts.SetSkip(*opts.Skip)
		}
		if opts.Limit != nil {
			findOpts.SetLimit(*opts.Limit)
		}
	}
	cursor, err := repo.Model.Find(ctx, filter, findOpts)
	if err != nil {
		logger.Error("mongo error occured while running FindMany", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "collection",
			Data: repo.Model.Name(),
		})
		return nil, apperrors.StoreError("FindMany", err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, apperrors.StoreError("FindMany", err)
	}
	return results, nil
}

func (repo *MongoRepository[T]) CountDocs(ctx context.Context, filter interface{}) (int64, error) {
	count, err := repo.Model.CountDocuments(ctx, filter)
	if err != nil {
		logger.Error("mongo error occured while running CountDocs", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return 0, apperrors.StoreError("CountDocs", err)
	}
	return count, nil
}

// DeleteByID reports whether a document was removed.
func (repo *MongoRepository[T]) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := repo.Model.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Error("mongo error occured while running DeleteByID", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return false, apperrors.StoreError("DeleteByID", err)
	}
	return result.DeletedCount == 1, nil
}

// UpdateOne runs a raw update. It reports whether a document matched or was upserted.
func (repo *MongoRepository[T]) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (bool, error) {
	result, err := repo.Model.UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return false, err
	}
	return result.MatchedCount+result.UpsertedCount > 0, nil
}
