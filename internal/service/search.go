package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/cloo-solutions/cravings/internal/telemetry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RecommendationClient is the external recommendation service.
type RecommendationClient interface {
	Locations(ctx context.Context) ([]string, error)
	Cuisines(ctx context.Context) ([]string, error)
	Recommend(ctx context.Context, intent domain.QueryIntent) (*domain.RecommendResponse, error)
}

// SearchController owns the state of one page session. Every mutation goes
// through its methods; readers get copies from State.
type SearchController struct {
	client RecommendationClient
	logger logrus.FieldLogger

	mu       sync.Mutex
	state    domain.State
	inFlight int

	locationsLoaded bool
	cuisinesLoaded  bool
	optionsMu sync.Mutex
}

func NewSearchController(client RecommendationClient, logger logrus.FieldLogger) *SearchController {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SearchController{
		client: client,
		logger: logger,
		state:  domain.NewState(),
	}
}

// State returns a snapshot of the current state.
func (c *SearchController) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Loading reports whether any search is in flight.
func (c *SearchController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Loading
}

// EnsureFilterOptions runs LoadFilterOptions until both lists have loaded
// once. After a failed fetch the next call tries again.
func (c *SearchController) EnsureFilterOptions(ctx context.Context) {
	c.optionsMu.Lock()
	defer c.optionsMu.Unlock()

	c.mu.Lock()
	complete := c.locationsLoaded && c.cuisinesLoaded
	c.mu.Unlock()
	if complete {
		return
	}
	c.LoadFilterOptions(ctx)
}

// LoadFilterOptions fetches locations and cuisines concurrently. A failed
// fetch leaves its list empty and is logged; it never raises an alert.
func (c *SearchController) LoadFilterOptions(ctx context.Context) {
	log := logging.FromContext(ctx, c.logger)

	var g errgroup.Group
	g.Go(func() error {
		locations, err := c.client.Locations(ctx)
		if err != nil {
			log.WithError(err).Error("failed to load locations")
			telemetry.CaptureError(ctx, err)
			return nil
		}
		c.mu.Lock()
		c.state.Options.Locations = locations
		c.locationsLoaded = true
		c.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		cuisines, err := c.client.Cuisines(ctx)
		if err != nil {
			log.WithError(err).Error("failed to load cuisines")
			telemetry.CaptureError(ctx, err)
			return nil
		}
		c.mu.Lock()
		c.state.Options.Cuisines = cuisines
		c.cuisinesLoaded = true
		c.mu.Unlock()
		return nil
	})
	_ = g.Wait()

	c.mu.Lock()
	c.state.OptionsLoaded = true
	c.mu.Unlock()
}

// Search sends one recommendation request built from prompt and sel and
// folds the response into the session state.
//
// On a transport failure the previous results are kept and a transport alert
// is raised. When recommendation_text is unusable (bad JSON, a bare null, or
// not a string), results and summary are cleared and a malformed-response
// alert is raised. Both return a *domain.DomainError.
func (c *SearchController) Search(ctx context.Context, prompt string, sel domain.Selections) (domain.RecommendationResult, error) {
	log := logging.FromContext(ctx, c.logger)

	c.begin(prompt, sel)
	defer c.end()

	intent := domain.NewQueryIntent(prompt, sel)
	telemetry.AddBreadcrumb(ctx, "search", "recommendation requested")

	resp, err := c.client.Recommend(ctx, intent)
	if err != nil {
		log.WithError(err).Error("failed to fetch recommendations")
		telemetry.CaptureError(ctx, err)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.state.Alert = domain.TransportAlert()
		return c.state.Result.Clone(), domain.NewDomainErrorWithCause(domain.ErrCodeUpstreamUnavailable, "failed to fetch recommendations", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !resp.HasRecommendation() {
		log.Warn("recommendation response carried no recommendation_text")
		return c.state.Result.Clone(), nil
	}

	c.state.Selections = ReconcileSelections(c.state.Selections, c.state.Options, resp.ParsedFilters)

	if len(resp.NonTextRecommendation) > 0 {
		err := fmt.Errorf("recommendation_text is not a string: %s", truncate(string(resp.NonTextRecommendation), 200))
		log.WithError(err).Error("failed to parse recommendation JSON")
		telemetry.CaptureError(ctx, err)
		return c.malformed(), domain.NewDomainErrorWithCause(domain.ErrCodeMalformedResponse, "recommendation text is not a string", err)
	}

	decoded, err := DecodeRecommendation(resp.RecommendationText)
	if err != nil {
		log.WithError(err).WithField("raw", resp.RecommendationText).Error("failed to parse recommendation JSON")
		telemetry.CaptureError(ctx, err)
		return c.malformed(), domain.NewDomainErrorWithCause(domain.ErrCodeMalformedResponse, "recommendation text is not valid JSON", err)
	}

	if decoded.Shape == ShapeUnrecognized {
		log.WithField("raw", resp.RecommendationText).Warn("recommendation JSON had no restaurant list")
	}
	if decoded.Skipped > 0 {
		log.WithFields(logrus.Fields{
			"shape":   decoded.Shape,
			"skipped": decoded.Skipped,
		}).Warn("dropped restaurant entries that were not objects")
	}
	log.WithFields(logrus.Fields{
		"shape":       decoded.Shape,
		"suggestions": len(decoded.Result.Suggestions),
	}).Debug("recommendations decoded")

	c.state.Result = decoded.Result
	return c.state.Result.Clone(), nil
}

// malformed clears results and raises the malformed-response alert. c.mu must be held.
func (c *SearchController) malformed() domain.RecommendationResult {
	c.state.Result = domain.EmptyResult()
	c.state.Alert = domain.MalformedResponseAlert()
	return c.state.Result.Clone()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *SearchController) begin(prompt string, sel domain.Selections) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight++
	c.state.Loading = true
	c.state.Prompt = prompt
	c.state.Selections = sel
	c.state.Alert = nil
}

func (c *SearchController) end() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	c.state.Loading = c.inFlight > 0
}
