package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/portal/internal/config"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/session"
)

type sessionEntry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SessionRepo stores session entries in the "sessions" collection and
// implements session.Storage.
type SessionRepo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	logger     logger.Logger
	config     *config.Config
}

func NewSessionRepo(cfg *config.Config, log logger.Logger) *SessionRepo {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &SessionRepo{
		logger: log,
		config: cfg,
	}
}

func (r *SessionRepo) Start(ctx context.Context) error {
	connString := r.config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017")
	dbName := r.config.GetStringOrDef("db.mongo.name", "portal")
	ttl := r.config.GetDurationOrDef("session.ttl", 24*time.Hour)

	clientOptions := options.Client().ApplyURI(connString).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.collection = r.db.Collection("sessions")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("cannot create index: %w", err)
	}

	r.logger.Infof("Connected to MongoDB: database: %s, collection: sessions", dbName)
	return nil
}

func (r *SessionRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, key string) (string, error) {
	if r.collection == nil {
		return "", fmt.Errorf("session repo not started")
	}

	var entry sessionEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cannot get session entry: %w", err)
	}
	return entry.Value, nil
}

func (r *SessionRepo) Set(ctx context.Context, key, value string) error {
	if r.collection == nil {
		return fmt.Errorf("session repo not started")
	}

	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("cannot save session entry: %w", err)
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, key string) error {
	if r.collection == nil {
		return fmt.Errorf("session repo not started")
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("cannot delete session entry: %w", err)
	}
	return nil
}

var _ session.Storage = (*SessionRepo)(nil)
