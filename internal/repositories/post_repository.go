package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/snapgram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error)
	GetPostsAfter(ctx context.Context, cursor string, limit int64) ([]models.Post, error)
	GetPostsByCreator(ctx context.Context, userID string) ([]models.Post, error)
	SearchPosts(ctx context.Context, term string) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) (*models.Post, error)
	SetLikes(ctx context.Context, id string, likes []string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the feed queries sort on
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []string{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetRecentPosts retrieves the newest posts by creation time
func (r *MongoPostRepository) GetRecentPosts(ctx context.Context, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{}, findOptions)
}

// GetPostsAfter pages through posts by last update, newest first. The page
// starts strictly after the post identified by cursor, or at the top when
// cursor is empty.
func (r *MongoPostRepository) GetPostsAfter(ctx context.Context, cursor string, limit int64) ([]models.Post, error) {
	filter := bson.M{}
	if cursor != "" {
		objID, err := objectID(cursor)
		if err != nil {
			return nil, err
		}
		var last struct {
			UpdatedAt time.Time `bson:"updated_at"`
		}
		err = r.collection.FindOne(ctx, bson.M{"_id": objID},
			options.FindOne().SetProjection(bson.M{"updated_at": 1})).Decode(&last)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		filter = bson.M{"$or": bson.A{
			bson.M{"updated_at": bson.M{"$lt": last.UpdatedAt}},
			bson.M{"updated_at": last.UpdatedAt, "_id": bson.M{"$lt": objID}},
		}}
	}
	findOptions := options.Find().SetLimit(limit).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, filter, findOptions)
}

// GetPostsByCreator retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByCreator(ctx context.Context, userID string) ([]models.Post, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"creator": userID}, findOptions)
}

// SearchPosts finds posts whose caption contains term, ignoring case
func (r *MongoPostRepository) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	filter := bson.M{"caption": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, findOptions)
}

// UpdatePost updates the editable fields of a post and returns the result
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return r.update(ctx, id, bson.M{
		"caption":    post.Caption,
		"image_url":  post.ImageURL,
		"image_id":   post.ImageID,
		"location":   post.Location,
		"tags":       tags,
		"updated_at": time.Now().UTC(),
	})
}

// SetLikes replaces the like list of a post and returns the result
func (r *MongoPostRepository) SetLikes(ctx context.Context, id string, likes []string) (*models.Post, error) {
	if likes == nil {
		likes = []string{}
	}
	return r.update(ctx, id, bson.M{
		"likes":      likes,
		"updated_at": time.Now().UTC(),
	})
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
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

func (r *MongoPostRepository) update(ctx context.Context, id string, set bson.M) (*models.Post, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return objID, nil
}
