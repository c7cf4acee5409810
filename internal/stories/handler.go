package stories

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/auth"
	"github.com/ayush/travel-journal/backend/internal/httputil"
	"github.com/ayush/travel-journal/backend/internal/models"
)

// Handler holds story HTTP handlers. All routes require auth.
type Handler struct {
	svc *Service
	log *logrus.Logger
}

func NewHandler(svc *Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Add handles POST /add-travel-story.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.StoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	story, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"story":   story,
		"message": "Travel story added successfully",
	})
}

// List handles GET /get-all-stories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAll(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stories": list,
		"message": "Travel stories fetched successfully",
	})
}

// Edit handles POST and PUT /edit-story/{id}.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req models.StoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	story, err := h.svc.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"story":   story,
		"message": "Travel story edited successfully",
	})
}

// Delete handles DELETE /delete-story/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Travel story deleted successfully",
	})
}

// SetFavourite handles PUT /update-is-favourite/{id}.
func (h *Handler) SetFavourite(w http.ResponseWriter, r *http.Request) {
	var req models.FavouriteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	story, err := h.svc.SetFavourite(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "id"), *req.IsFavourite)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"story":   story,
		"message": "isFavourite updated successfully",
	})
}

// Search handles GET /search-stories?query=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Search(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("query"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stories": list})
}

// Filter handles GET /travel-stories/filter?startDate=&endDate=.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.FilterByDate(r.Context(), auth.UserID(r.Context()), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"stories": list})
}
