package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/travel-journal/backend/internal/models"
)

// MemoryStore keeps stories in process memory. It implements the same
// contract as MongoStore and is meant for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	stories []models.Story // insertion order
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, story *models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	story.ID = primitive.NewObjectID()
	story.CreatedOn = s.now().UTC()
	s.stories = append(s.stories, cloneStory(*story))
	return nil
}

func (s *MemoryStore) Find(_ context.Context, q models.StoryQuery) ([]models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Story{}
	for _, st := range s.stories {
		if matches(st, q) {
			out = append(out, cloneStory(st))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsFavourite && !out[j].IsFavourite
	})
	return out, nil
}

func (s *MemoryStore) UpdateOwned(_ context.Context, id, userID string, c models.StoryChanges) (*models.Story, error) {
	return s.mutate(id, userID, func(st *models.Story) {
		st.Title = c.Title
		st.Story = c.Story
		st.VisitedLocation = slices.Clone(c.VisitedLocation)
		st.ImageURL = c.ImageURL
		st.VisitedDate = c.VisitedDate
	})
}

func (s *MemoryStore) SetFavourite(_ context.Context, id, userID string, favourite bool) (*models.Story, error) {
	return s.mutate(id, userID, func(st *models.Story) { st.IsFavourite = favourite })
}

func (s *MemoryStore) DeleteOwned(_ context.Context, id, userID string) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOwned(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	deleted := s.stories[i]
	s.stories = slices.Delete(s.stories, i, i+1)
	return &deleted, nil
}

func (s *MemoryStore) ImageURLs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	var urls []string
	for _, st := range s.stories {
		if st.ImageURL == "" {
			continue
		}
		if _, ok := seen[st.ImageURL]; !ok {
			seen[st.ImageURL] = struct{}{}
			urls = append(urls, st.ImageURL)
		}
	}
	return urls, nil
}

func (s *MemoryStore) mutate(id, userID string, apply func(*models.Story)) (*models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOwned(id, userID)
	if i < 0 {
		return nil, ErrNotFound
	}
	apply(&s.stories[i])
	out := cloneStory(s.stories[i])
	return &out, nil
}

func (s *MemoryStore) indexOwned(id, userID string) int {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return -1
	}
	return slices.IndexFunc(s.stories, func(st models.Story) bool {
		return st.ID == oid && st.UserID == userID
	})
}

func matches(st models.Story, q models.StoryQuery) bool {
	if st.UserID != q.UserID {
		return false
	}
	if q.From != nil && st.VisitedDate.Before(*q.From) {
		return false
	}
	if q.To != nil && st.VisitedDate.After(*q.To) {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(st.Title), needle) || strings.Contains(strings.ToLower(st.Story), needle) {
		return true
	}
	return slices.ContainsFunc(st.VisitedLocation, func(loc string) bool {
		return strings.Contains(strings.ToLower(loc), needle)
	})
}

func cloneStory(st models.Story) models.Story {
	st.VisitedLocation = slices.Clone(st.VisitedLocation)
	return st
}
