package datastore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"rollcall.io/infrastructure/env"
	"rollcall.io/infrastructure/logger"
)

var (
	IdentityModel   *mongo.Collection
	AttendanceModel *mongo.Collection
	OperatorModel   *mongo.Collection

	client *mongo.Client
)

func ConnectToDatabase(cfg env.Config) error {
	if cfg.DBURL == "" {
		logger.Error("mongo url missing")
		return errors.New("DB_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.DBURL)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)

	var err error
	client, err = mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Error("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}
	if err = client.Ping(ctx, nil); err != nil {
		logger.Error("could not reach mongodb", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}

	db := client.Database(cfg.DBName)
	if err = setUpIndexes(ctx, db, cfg); err != nil {
		return err
	}

	logger.Info("connected to mongodb successfully")
	return nil
}

// Set up the indexes for the database
func setUpIndexes(ctx context.Context, db *mongo.Database, cfg env.Config) error {
	IdentityModel = db.Collection(cfg.IdentityCollection)

	// one document per day. the unique index is what makes the conditional
	// upsert in the ledger store safe under concurrent first writes.
	AttendanceModel = db.Collection(cfg.AttendanceCollection)
	if _, err := AttendanceModel.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logger.Error("could not create attendance index", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}

	OperatorModel = db.Collection(cfg.OperatorCollection)
	if _, err := OperatorModel.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logger.Error("could not create operator index", logger.LoggerOptions{Key: "error", Data: err})
		return err
	}

	logger.Info("mongodb indexes set up successfully")
	return nil
}

func Ping(ctx context.Context) error {
	if client == nil {
		return errors.New("mongodb is not connected")
	}
	return client.Ping(ctx, nil)
}

func Disconnect(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("error disconnecting mongodb", logger.LoggerOptions{Key: "error", Data: err})
	}
}
