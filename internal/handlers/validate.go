package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// checkContentType пропускает запрос без Content-Type, иначе требует target
func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// parseID читает положительный id из пути
func parseID(r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	if idParam == "" {
		idParam = r.PathValue("id")
	}

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
