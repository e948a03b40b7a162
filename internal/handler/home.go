package handler

import (
	"net/http"

	"github.com/msomdec/store-rating/internal/view"
)

// HandleHome renders the home page.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := view.HomePage(UserFromContext(r.Context())).Render(r.Context(), w); err != nil {
		logError(r, "render home", err)
	}
}
