package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/travel-journal/backend/internal/models"
)

func TestBuildFilterOwnerOnly(t *testing.T) {
	assert.Equal(t, bson.M{"userId": "u1"}, buildFilter(models.StoryQuery{UserID: "u1"}))
}

func TestBuildFilterTextIsLiteralAndCaseInsensitive(t *testing.T) {
	f := buildFilter(models.StoryQuery{UserID: "u1", Text: "a.b*"})
	re := primitive.Regex{Pattern: `a\.b\*`, Options: "i"}
	assert.Equal(t, "u1", f["userId"])
	assert.Equal(t, bson.A{
		bson.M{"title": re},
		bson.M{"story": re},
		bson.M{"visitedLocation": re},
	}, f["$or"])
}

func TestBuildFilterDateRangeInclusive(t *testing.T) {
	from := time.UnixMilli(1000).UTC()
	to := time.UnixMilli(2000).UTC()
	f := buildFilter(models.StoryQuery{UserID: "u1", From: &from, To: &to})
	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, f["visitedDate"])
}

func TestOwnedFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	f, ok := ownedFilter(oid.Hex(), "u1")
	assert.True(t, ok)
	assert.Equal(t, bson.M{"_id": oid, "userId": "u1"}, f)

	_, ok = ownedFilter("not-an-id", "u1")
	assert.False(t, ok)
}
