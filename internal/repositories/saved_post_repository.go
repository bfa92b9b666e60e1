package repositories

import (
	"context"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SavedPostRepository defines the interface for saved post operations
type SavedPostRepository interface {
	SavePost(ctx context.Context, save *models.Save) error
	DeleteSave(ctx context.Context, id string) error
	GetSavesByUser(ctx context.Context, userID string) ([]models.Save, error)
}

// MongoSavedPostRepository implements SavedPostRepository for MongoDB
type MongoSavedPostRepository struct {
	collection *mongo.Collection
}

func NewMongoSavedPostRepository(db *mongo.Database) *MongoSavedPostRepository {
	return &MongoSavedPostRepository{collection: db.Collection("saves")}
}

// EnsureIndexes allows one save per user and post
func (r *MongoSavedPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "post", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoSavedPostRepository) SavePost(ctx context.Context, save *models.Save) error {
	save.ID = primitive.NewObjectID()
	save.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, save)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoSavedPostRepository) DeleteSave(ctx context.Context, id string) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoSavedPostRepository) GetSavesByUser(ctx context.Context, userID string) ([]models.Save, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	saves := []models.Save{}
	if err = cursor.All(ctx, &saves); err != nil {
		return nil, err
	}
	return saves, nil
}
