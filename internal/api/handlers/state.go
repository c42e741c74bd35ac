package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cloo-solutions/cravings/internal/api"
	"github.com/cloo-solutions/cravings/internal/domain"
)

type SearchRequest struct {
	Prompt    string            `json:"prompt"`
	Location  domain.FlexString `json:"location"`
	Cuisine   domain.FlexString `json:"cuisine"`
	MaxPrice  domain.FlexString `json:"max_price"`
	MinRating domain.FlexString `json:"min_rating"`
}

// State returns the session state as JSON.
func (h *SearchHandler) State(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	api.Success(w, http.StatusOK, ctrl.State())
}

// SearchJSON runs a search from a JSON body and returns the resulting state.
// Failures still carry the state, with the status taken from the error.
func (h *SearchHandler) SearchJSON(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel := selectionsFrom(string(req.Location), string(req.Cuisine), string(req.MaxPrice), string(req.MinRating))
	if err := sel.ValidateNumeric(); err != nil {
		api.HandleError(w, err)
		return
	}

	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	_, err := ctrl.Search(r.Context(), req.Prompt, sel)
	api.Partial(w, ctrl.State(), err)
}
