package media

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/apperr"
	"github.com/ayush/travel-journal/backend/internal/httputil"
)

// Handler exposes upload, delete and download of images.
type Handler struct {
	media *Manager
	log   *logrus.Logger
}

func NewHandler(m *Manager, log *logrus.Logger) *Handler {
	return &Handler{media: m, log: log}
}

// Upload accepts a multipart form with the file in field "image".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, r, h.log, apperr.Validation("Image is too large"))
			return
		}
		httputil.WriteError(w, r, h.log, apperr.Wrap(apperr.KindValidation, "No file uploaded", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteError(w, r, h.log, apperr.Wrap(apperr.KindValidation, "No file uploaded", err))
		return
	}
	defer file.Close()

	imageURL, err := h.media.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"error":    false,
		"imageUrl": imageURL,
		"message":  "Image uploaded successfully",
	})
}

// Delete removes the image named by the imageUrl query parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.media.DeleteByURL(r.Context(), r.URL.Query().Get("imageUrl")); err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"message": "Image deleted successfully",
	})
}

// Serve streams a stored image.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	rc, obj, err := h.media.Open(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, r, h.log, err)
		return
	}
	defer rc.Close()

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, obj.Name, obj.ModTime, rs)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.log.WithError(err).WithField("name", obj.Name).Warn("image stream interrupted")
	}
}
