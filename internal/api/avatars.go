package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/erazemk/borza/internal/avatar"
)

// AvatarsHandler serves generated placeholder avatars.
type AvatarsHandler struct{}

// Get handles GET /avatars/{file}. The file name is the escaped seed plus a
// .png extension, as produced by avatar.URL.
func (h *AvatarsHandler) Get(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	if !strings.HasSuffix(file, ".png") {
		jsonError(w, http.StatusNotFound, "not found")
		return
	}

	seed, err := url.PathUnescape(strings.TrimSuffix(file, ".png"))
	if err != nil || seed == "" {
		jsonError(w, http.StatusBadRequest, "invalid avatar seed")
		return
	}

	data, err := avatar.Render(seed)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
