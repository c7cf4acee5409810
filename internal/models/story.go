package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is a single travel journal entry stored in MongoDB.
type Story struct {
	ID              primitive.ObjectID `json:"_id"             bson:"_id,omitempty"`
	UserID          string             `json:"userId"          bson:"userId"`
	Title           string             `json:"title"           bson:"title"`
	Story           string             `json:"story"           bson:"story"`
	VisitedLocation []string           `json:"visitedLocation" bson:"visitedLocation"`
	ImageURL        string             `json:"imageUrl"        bson:"imageUrl"`
	VisitedDate     time.Time          `json:"visitedDate"     bson:"visitedDate"`
	IsFavourite     bool               `json:"isFavourite"     bson:"isFavourite"`
	CreatedOn       time.Time          `json:"createdOn"       bson:"createdOn"`
}

// StoryRequest is the JSON body for POST /add-travel-story and /edit-story/{id}.
// VisitedLocation must be present but may be empty.
type StoryRequest struct {
	Title           string       `json:"title"           validate:"required"`
	Story           string       `json:"story"           validate:"required"`
	VisitedLocation []string     `json:"visitedLocation" validate:"required"`
	ImageURL        string       `json:"imageUrl"`
	VisitedDate     *EpochMillis `json:"visitedDate"     validate:"required"`
}

// FavouriteRequest is the JSON body for PUT /update-is-favourite/{id}.
type FavouriteRequest struct {
	IsFavourite *bool `json:"isFavourite" validate:"required"`
}

// StoryChanges is the full replacement applied by an edit.
type StoryChanges struct {
	Title           string
	Story           string
	VisitedLocation []string
	ImageURL        string
	VisitedDate     time.Time
}

// StoryQuery selects stories of one owner. Zero fields do not constrain.
type StoryQuery struct {
	UserID string
	Text   string
	From   *time.Time
	To     *time.Time
}

// EpochMillis is a point in time sent as milliseconds since the Unix epoch,
// either as a JSON number or a numeric string.
type EpochMillis int64

func (m *EpochMillis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	v, err := ParseMillis(string(b))
	if err != nil {
		return err
	}
	*m = EpochMillis(v)
	return nil
}

func (m EpochMillis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// ParseMillis parses an integer millisecond timestamp. Fractional values
// are truncated.
func ParseMillis(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid millisecond timestamp %q", s)
	}
	return int64(f), nil
}

// MediaObject describes a stored media file.
type MediaObject struct {
	Name    string
	Size    int64
	ModTime time.Time
}
