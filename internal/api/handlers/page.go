package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"math"
	"net/http"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/logging"
)

//go:embed templates/page.html
var templateFS embed.FS

var (
	priceOptions  = []string{"500", "1000", "2000", "5000"}
	ratingOptions = []string{"3.0", "3.5", "4.0", "4.5"}
)

var pageTemplate = template.Must(
	template.New("page.html").Funcs(template.FuncMap{
		"withSelected": withSelected,
		"stars":        stars,
		"rating":       domain.FormatRating,
	}).ParseFS(templateFS, "templates/page.html"),
)

type pageView struct {
	State         domain.State
	PriceOptions  []string
	RatingOptions []string
}

// Page renders the search page for the caller's session.
func (h *SearchHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.render(w, r, ctrl.State())
}

// Search runs a search from the submitted form and renders the result. Any
// failure is shown as the page's alert banner.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	sel := selectionsFrom(
		r.PostFormValue("location"),
		r.PostFormValue("cuisine"),
		r.PostFormValue("max_price"),
		r.PostFormValue("min_rating"),
	)
	_, _ = ctrl.Search(r.Context(), r.PostFormValue("prompt"), sel)

	h.render(w, r, ctrl.State())
}

func (h *SearchHandler) render(w http.ResponseWriter, r *http.Request, state domain.State) {
	var buf bytes.Buffer
	view := pageView{State: state, PriceOptions: priceOptions, RatingOptions: ratingOptions}
	if err := pageTemplate.Execute(&buf, view); err != nil {
		logging.FromContext(r.Context(), h.logger).WithError(err).Error("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// withSelected returns options with selected appended when it is set but not
// already listed, so a value reconciled from the prompt stays visible.
func withSelected(options []string, selected string) []string {
	if selected == "" {
		return options
	}
	for _, o := range options {
		if o == selected {
			return options
		}
	}
	out := make([]string, 0, len(options)+1)
	out = append(out, options...)
	return append(out, selected)
}

// stars reports which of the five stars are filled for rating.
func stars(rating float64) []bool {
	filled := int(math.Floor(rating))
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < filled
	}
	return out
}
