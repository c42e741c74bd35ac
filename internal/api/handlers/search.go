package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/cravings/internal/api"
	"github.com/cloo-solutions/cravings/internal/api/middleware"
	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/service"
	"github.com/sirupsen/logrus"
)

// Sessions hands out the controller that owns a session's state.
type Sessions interface {
	Controller(id string) *service.SearchController
}

type SearchHandler struct {
	sessions Sessions
	logger   logrus.FieldLogger
}

func NewSearchHandler(sessions Sessions, logger logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{sessions: sessions, logger: logger}
}

// controller resolves the session's controller and makes sure its filter
// options have been requested once.
func (h *SearchHandler) controller(w http.ResponseWriter, r *http.Request) (*service.SearchController, bool) {
	sessionID := middleware.GetSessionID(r.Context())
	if sessionID == "" {
		api.Error(w, http.StatusInternalServerError, "missing session")
		return nil, false
	}

	ctrl := h.sessions.Controller(sessionID)
	ctrl.EnsureFilterOptions(detach(r.Context()))
	return ctrl, true
}

// selectionsFrom fills empty numeric fields with the page defaults.
func selectionsFrom(location, cuisine, maxPrice, minRating string) domain.Selections {
	sel := domain.DefaultSelections()
	sel.Location = strings.TrimSpace(location)
	sel.Cuisine = strings.TrimSpace(cuisine)
	if v := strings.TrimSpace(maxPrice); v != "" {
		sel.MaxPrice = v
	}
	if v := strings.TrimSpace(minRating); v != "" {
		sel.MinRating = v
	}
	return sel
}

// detach keeps request-scoped values but drops cancellation, so options
// shared by later requests are not lost to one closed connection.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
