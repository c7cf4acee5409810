// Package stories implements owner-scoped travel story management and
// the search and date queries over a user's entries.
package stories

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/models"
	"github.com/ayush/travel-journal/backend/internal/store"
)

// Store is implemented by store.MongoStore and store.MemoryStore. Every
// mutating call matches on both the story id and the owner in one step.
type Store interface {
	Insert(ctx context.Context, story *models.Story) error
	Find(ctx context.Context, q models.StoryQuery) ([]models.Story, error)
	UpdateOwned(ctx context.Context, id, userID string, c models.StoryChanges) (*models.Story, error)
	SetFavourite(ctx context.Context, id, userID string, favourite bool) (*models.Story, error)
	DeleteOwned(ctx context.Context, id, userID string) (*models.Story, error)
}

// MediaRemover deletes the image behind a story.
type MediaRemover interface {
	DeleteByURL(ctx context.Context, rawURL string) error
	Manages(rawURL string) bool
}

type Service struct {
	store       Store
	media       MediaRemover
	placeholder string
	log         *logrus.Logger
}

func NewService(s Store, media MediaRemover, placeholderURL string, log *logrus.Logger) *Service {
	return &Service{store: s, media: media, placeholder: placeholderURL, log: log}
}

// Create stores a new story for owner.
func (s *Service) Create(ctx context.Context, owner string, req models.StoryRequest) (*models.Story, error) {
	if err := models.Validate(req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		return nil, apperr.Validation("Title, story, imageUrl, and visitedDate are required")
	}

	story := &models.Story{
		UserID:          owner,
		Title:           req.Title,
		Story:           req.Story,
		VisitedLocation: req.VisitedLocation,
		ImageURL:        req.ImageURL,
		VisitedDate:     req.VisitedDate.Time(),
	}
	if err := s.store.Insert(ctx, story); err != nil {
		return nil, apperr.Internal("Failed to add travel story", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": owner, "story_id": story.ID.Hex()}).Info("story created")
	return story, nil
}

// ListAll returns every story of owner, favourites first.
func (s *Service) ListAll(ctx context.Context, owner string) ([]models.Story, error) {
	list, err := s.store.Find(ctx, models.StoryQuery{UserID: owner})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch travel stories", err)
	}
	return list, nil
}

// Update replaces the editable fields of one of owner's stories. An empty
// imageUrl falls back to the placeholder image.
func (s *Service) Update(ctx context.Context, owner, id string, req models.StoryRequest) (*models.Story, error) {
	if err := models.Validate(req); err != nil {
		return nil, apperr.Validation("Title, story, visitedLocation, and visitedDate are required")
	}

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		imageURL = s.placeholder
	}
	updated, err := s.store.UpdateOwned(ctx, id, owner, models.StoryChanges{
		Title:           req.Title,
		Story:           req.Story,
		VisitedLocation: req.VisitedLocation,
		ImageURL:        imageURL,
		VisitedDate:     req.VisitedDate.Time(),
	})
	if err != nil {
		return nil, notFoundOr(err, "Failed to edit travel story")
	}
	return updated, nil
}

// Delete removes one of owner's stories and then, best effort, its image.
// A failed image removal is logged and does not fail the call.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	deleted, err := s.store.DeleteOwned(ctx, id, owner)
	if err != nil {
		return notFoundOr(err, "Failed to delete travel story")
	}

	url := deleted.ImageURL
	if url == "" || url == s.placeholder || s.media == nil || !s.media.Manages(url) {
		return nil
	}
	if err := s.media.DeleteByURL(ctx, url); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"story_id":  id,
			"image_url": url,
		}).Warn("failed to delete story image")
	}
	return nil
}

// SetFavourite sets the favourite flag. Setting the current value again is
// not an error.
func (s *Service) SetFavourite(ctx context.Context, owner, id string, favourite bool) (*models.Story, error) {
	updated, err := s.store.SetFavourite(ctx, id, owner, favourite)
	if err != nil {
		return nil, notFoundOr(err, "Failed to update isFavourite")
	}
	return updated, nil
}

// Search matches query literally and case-insensitively against title,
// story and visited locations.
func (s *Service) Search(ctx context.Context, owner, query string) ([]models.Story, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Please enter a search query")
	}
	list, err := s.store.Find(ctx, models.StoryQuery{UserID: owner, Text: query})
	if err != nil {
		return nil, apperr.Internal("Failed to search travel stories", err)
	}
	return list, nil
}

// FilterByDate returns stories whose visit date lies in [start, end].
// Both bounds are milliseconds since the epoch. An inverted range matches
// nothing.
func (s *Service) FilterByDate(ctx context.Context, owner, startMs, endMs string) ([]models.Story, error) {
	startMs, endMs = strings.TrimSpace(startMs), strings.TrimSpace(endMs)
	if startMs == "" || endMs == "" {
		return nil, apperr.Validation("startDate and endDate are required")
	}
	start, err := models.ParseMillis(startMs)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "startDate must be a timestamp in milliseconds", err)
	}
	end, err := models.ParseMillis(endMs)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "endDate must be a timestamp in milliseconds", err)
	}
	if start > end {
		return []models.Story{}, nil
	}

	from, to := models.EpochMillis(start).Time(), models.EpochMillis(end).Time()
	list, err := s.store.Find(ctx, models.StoryQuery{UserID: owner, From: &from, To: &to})
	if err != nil {
		return nil, apperr.Internal("Failed to filter travel stories", err)
	}
	return list, nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Story not found")
	}
	return apperr.Internal(msg, err)
}
