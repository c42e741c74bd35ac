package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/cloo-solutions/cravings/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecommendationClient struct {
	mock.Mock
}

func (m *MockRecommendationClient) Locations(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecommendationClient) Cuisines(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecommendationClient) Recommend(ctx context.Context, intent domain.QueryIntent) (*domain.RecommendResponse, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendResponse), args.Error(1)
}

type mapSessions struct {
	mu          sync.Mutex
	client      service.RecommendationClient
	controllers map[string]*service.SearchController
}

func newMapSessions(client service.RecommendationClient) *mapSessions {
	return &mapSessions{client: client, controllers: map[string]*service.SearchController{}}
}

func (s *mapSessions) Controller(id string) *service.SearchController {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[id]
	if !ok {
		ctrl = service.NewSearchController(s.client, nil)
		s.controllers[id] = ctrl
	}
	return ctrl
}

const thaiText = `{"restaurants":[{"id":"r1","name":"Thai House","rating":4.3,"costForTwo":"800","address":"5th Block, Koramangala","cuisines":"Thai","aiReason":"Fiery curries"}],"summary":"Spicy picks nearby"}`

func newClient() *MockRecommendationClient {
	client := new(MockRecommendationClient)
	client.On("Locations", mock.Anything).Return([]string{"Indiranagar", "Koramangala 5th Block"}, nil)
	client.On("Cuisines", mock.Anything).Return([]string{"Italian", "Thai"}, nil)
	return client
}

func withSession(req *http.Request, id string) *http.Request {
	return req.WithContext(logging.WithSessionID(req.Context(), id))
}

func TestPage_RendersOptionsAndEmptyState(t *testing.T) {
	client := newClient()
	h := NewSearchHandler(newMapSessions(client), logging.Discard())

	w := httptest.NewRecorder()
	h.Page(w, withSession(httptest.NewRequest(http.MethodGet, "/", nil), "s1"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `<option value="Koramangala 5th Block">`)
	assert.Contains(t, body, `<option value="Thai">`)
	assert.Contains(t, body, `<option value="1000" selected>`)
	assert.Contains(t, body, `<option value="4.0" selected>`)
	assert.Contains(t, body, "Just type it.")
	assert.NotContains(t, body, "Problem solved.")
}

func TestPage_LoadsOptionsOncePerSession(t *testing.T) {
	client := newClient()
	h := NewSearchHandler(newMapSessions(client), logging.Discard())

	for i := 0; i < 3; i++ {
		h.Page(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodGet, "/", nil), "s1"))
	}

	client.AssertNumberOfCalls(t, "Locations", 1)
	client.AssertNumberOfCalls(t, "Cuisines", 1)
}

func TestPage_MissingSession(t *testing.T) {
	h := NewSearchHandler(newMapSessions(newClient()), logging.Discard())

	w := httptest.NewRecorder()
	h.Page(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSearch_RendersCardsAndReconciledFilters(t *testing.T) {
	client := newClient()
	client.On("Recommend", mock.Anything, mock.MatchedBy(func(in domain.QueryIntent) bool {
		return in.SearchQuery == "spicy thai in koramangala" && in.MaxPrice == 1000 && in.MinRating == 4.0 && in.TopN == 6
	})).Return(&domain.RecommendResponse{
		RecommendationText: thaiText,
		ParsedFilters:      &domain.ParsedFilters{Location: "koramangala", Cuisine: "thai"},
	}, nil)
	h := NewSearchHandler(newMapSessions(client), logging.Discard())

	form := url.Values{"prompt": {"spicy thai in koramangala"}}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	h.Search(w, withSession(req, "s1"))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Here you go. Problem solved.")
	assert.Contains(t, body, "Thai House")
	assert.Contains(t, body, "Avg. ₹800 for two")
	assert.Contains(t, body, "Fiery curries")
	assert.Contains(t, body, "Spicy picks nearby")
	assert.Contains(t, body, `<option value="Koramangala 5th Block" selected>`)
	assert.Contains(t, body, `<option value="Thai" selected>`)
	assert.Contains(t, body, `value="spicy thai in koramangala"`)
}

func TestSearch_MalformedShowsBanner(t *testing.T) {
	client := newClient()
	client.On("Recommend", mock.Anything, mock.Anything).Return(&domain.RecommendResponse{RecommendationText: "Sorry, I can't help"}, nil)
	h := NewSearchHandler(newMapSessions(client), logging.Discard())

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("prompt=anything"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Search(w, withSession(req, "s1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-kind="malformed_response"`)
	assert.Contains(t, w.Body.String(), "AI returned a malformed response. Please try again.")
}

func TestSearchJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newClient()
		client.On("Recommend", mock.Anything, mock.MatchedBy(func(in domain.QueryIntent) bool {
			return in.MaxPrice == 2000 && in.MinRating == 4.5
		})).Return(&domain.RecommendResponse{RecommendationText: thaiText}, nil)
		h := NewSearchHandler(newMapSessions(client), logging.Discard())

		body := `{"prompt":"thai","max_price":2000,"min_rating":"4.5"}`
		w := httptest.NewRecorder()
		h.SearchJSON(w, withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(body)), "s1"))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data domain.State `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Result.Suggestions, 1)
		assert.Equal(t, "Thai House", resp.Data.Result.Suggestions[0].Name)
		assert.False(t, resp.Data.Loading)
		assert.Nil(t, resp.Data.Alert)
	})

	t.Run("transport failure keeps state and returns 502", func(t *testing.T) {
		client := newClient()
		client.On("Recommend", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
		h := NewSearchHandler(newMapSessions(client), logging.Discard())

		w := httptest.NewRecorder()
		h.SearchJSON(w, withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(`{"prompt":"x"}`)), "s1"))

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp struct {
			Data  domain.State `json:"data"`
			Error string       `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Data.Alert)
		assert.Equal(t, domain.AlertTransport, resp.Data.Alert.Kind)
		assert.Contains(t, resp.Error, domain.ErrCodeUpstreamUnavailable)
	})

	t.Run("malformed returns 502 with empty results", func(t *testing.T) {
		client := newClient()
		client.On("Recommend", mock.Anything, mock.Anything).Return(&domain.RecommendResponse{RecommendationText: "{not json"}, nil)
		h := NewSearchHandler(newMapSessions(client), logging.Discard())

		w := httptest.NewRecorder()
		h.SearchJSON(w, withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(`{"prompt":"x"}`)), "s1"))

		require.Equal(t, http.StatusBadGateway, w.Code)
		var resp struct {
			Data domain.State `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Result.Suggestions)
		require.NotNil(t, resp.Data.Alert)
		assert.Equal(t, domain.AlertMalformedResponse, resp.Data.Alert.Kind)
	})

	t.Run("bad rating is rejected", func(t *testing.T) {
		client := newClient()
		h := NewSearchHandler(newMapSessions(client), logging.Discard())

		w := httptest.NewRecorder()
		h.SearchJSON(w, withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(`{"min_rating":"lots"}`)), "s1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		client.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
	})

	t.Run("invalid body", func(t *testing.T) {
		h := NewSearchHandler(newMapSessions(newClient()), logging.Discard())

		w := httptest.NewRecorder()
		h.SearchJSON(w, withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(`{`)), "s1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestState_SessionsAreIsolated(t *testing.T) {
	client := newClient()
	client.On("Recommend", mock.Anything, mock.Anything).Return(&domain.RecommendResponse{RecommendationText: thaiText}, nil)
	h := NewSearchHandler(newMapSessions(client), logging.Discard())

	h.SearchJSON(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodPost, "/state/search", strings.NewReader(`{"prompt":"thai"}`)), "a"))

	w := httptest.NewRecorder()
	h.State(w, withSession(httptest.NewRequest(http.MethodGet, "/state", nil), "b"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data domain.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Result.Suggestions)
	assert.Empty(t, resp.Data.Prompt)
	assert.True(t, resp.Data.OptionsLoaded)
	assert.Equal(t, []string{"Indiranagar", "Koramangala 5th Block"}, resp.Data.Options.Locations)
}

func TestWithSelected(t *testing.T) {
	opts := []string{"500", "1000"}
	assert.Equal(t, opts, withSelected(opts, ""))
	assert.Equal(t, opts, withSelected(opts, "1000"))
	assert.Equal(t, []string{"500", "1000", "1500"}, withSelected(opts, "1500"))
	assert.Equal(t, []string{"500", "1000"}, opts)
}

func TestStars(t *testing.T) {
	assert.Equal(t, []bool{true, true, true, true, false}, stars(4.7))
	assert.Equal(t, []bool{false, false, false, false, false}, stars(0))
}
