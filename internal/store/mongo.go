package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/travel-journal/backend/internal/models"
)

// storyOrder lists favourites first, then insertion order (ObjectIDs grow
// monotonically).
var storyOrder = bson.D{{Key: "isFavourite", Value: -1}, {Key: "_id", Value: 1}}

// MongoStore handles travel story CRUD in MongoDB. Every mutation is a
// single conditional operation keyed on (_id, userId).
type MongoStore struct {
	col *mongo.Collection
	now func() time.Time
}

// ConnectMongo dials and pings MongoDB.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("travel_stories"), now: time.Now}
}

// EnsureIndexes creates the owner and owner+date indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isFavourite", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "visitedDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	story.CreatedOn = s.now().UTC()
	if _, err := s.col.InsertOne(ctx, story); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *MongoStore) Find(ctx context.Context, q models.StoryQuery) ([]models.Story, error) {
	cur, err := s.col.Find(ctx, buildFilter(q), options.Find().SetSort(storyOrder))
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	stories := []models.Story{}
	if err := cur.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return stories, nil
}

func (s *MongoStore) UpdateOwned(ctx context.Context, id, userID string, c models.StoryChanges) (*models.Story, error) {
	return s.findAndSet(ctx, id, userID, bson.M{
		"title":           c.Title,
		"story":           c.Story,
		"visitedLocation": c.VisitedLocation,
		"imageUrl":        c.ImageURL,
		"visitedDate":     c.VisitedDate,
	})
}

func (s *MongoStore) SetFavourite(ctx context.Context, id, userID string, favourite bool) (*models.Story, error) {
	return s.findAndSet(ctx, id, userID, bson.M{"isFavourite": favourite})
}

func (s *MongoStore) findAndSet(ctx context.Context, id, userID string, set bson.M) (*models.Story, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var story models.Story
	err := s.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo update: %w", err)
	}
	return &story, nil
}

// DeleteOwned removes the story and returns what was deleted.
func (s *MongoStore) DeleteOwned(ctx context.Context, id, userID string) (*models.Story, error) {
	filter, ok := ownedFilter(id, userID)
	if !ok {
		return nil, ErrNotFound
	}
	var story models.Story
	err := s.col.FindOneAndDelete(ctx, filter).Decode(&story)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo delete: %w", err)
	}
	return &story, nil
}

// ImageURLs returns every distinct image URL referenced by any story.
func (s *MongoStore) ImageURLs(ctx context.Context) ([]string, error) {
	vals, err := s.col.Distinct(ctx, "imageUrl", bson.M{"imageUrl": bson.M{"$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("mongo distinct: %w", err)
	}
	urls := make([]string, 0, len(vals))
	for _, v := range vals {
		if u, ok := v.(string); ok {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// ownedFilter matches one story of one owner. A malformed id can match
// nothing, so it is reported the same way as a missing story.
func ownedFilter(id, userID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": userID}, true
}

func buildFilter(q models.StoryQuery) bson.M {
	filter := bson.M{"userId": q.UserID}
	if q.Text != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Text), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"story": re},
			bson.M{"visitedLocation": re},
		}
	}
	if q.From != nil || q.To != nil {
		rng := bson.M{}
		if q.From != nil {
			rng["$gte"] = *q.From
		}
		if q.To != nil {
			rng["$lte"] = *q.To
		}
		filter["visitedDate"] = rng
	}
	return filter
}
