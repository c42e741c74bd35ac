//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/cloo-solutions/cravings/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thaiText = "```json\n" + `{"restaurants":[{"id":"r1","name":"Thai House","rating":"4.3/5","costForTwo":800,"address":"5th Block, Koramangala","cuisines":"Thai","aiReason":"Fiery curries"}],"summary":"Spicy picks nearby"}` + "\n```"

func TestE2E_PageFlow(t *testing.T) {
	env := SetupE2EEnv(t, "production")
	defer env.Cleanup()
	env.Backend.SetRecommendText(thaiText)

	body, status, err := env.GetPage("/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<option value="Koramangala 5th Block">`)
	assert.Contains(t, body, "Just type it.")

	body, status, err = env.PostForm("/search", map[string]string{"prompt": "spicy thai in koramangala"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Thai House")
	assert.Contains(t, body, "Avg. ₹800 for two")
	assert.Contains(t, body, `<option value="Koramangala 5th Block" selected>`)

	// The same session sees the results through the JSON view.
	resp, err := env.Get("/state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	var state domain.State
	require.NoError(t, json.Unmarshal(resp.Data, &state))
	require.Len(t, state.Result.Suggestions, 1)
	assert.Equal(t, 4.3, state.Result.Suggestions[0].Rating)
	assert.Equal(t, "Thai", state.Selections.Cuisine)
}

func TestE2E_MalformedKeepsSessionUsable(t *testing.T) {
	env := SetupE2EEnv(t, "production")
	defer env.Cleanup()

	env.Backend.SetRecommendText("not json at all")
	resp, err := env.Post("/state/search", map[string]string{"prompt": "anything"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.Status)

	var state domain.State
	require.NoError(t, json.Unmarshal(resp.Data, &state))
	require.NotNil(t, state.Alert)
	assert.Equal(t, domain.AlertMalformedResponse, state.Alert.Kind)
	assert.False(t, state.Loading)

	env.Backend.SetRecommendText(thaiText)
	resp, err = env.Post("/state/search", map[string]string{"prompt": "thai"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, &state))
	assert.Nil(t, state.Alert)
	assert.Len(t, state.Result.Suggestions, 1)
}

func TestE2E_DevelopmentProxy(t *testing.T) {
	prod := SetupE2EEnv(t, "production")
	defer prod.Cleanup()
	_, status, err := prod.GetPage("/api/locations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)

	dev := SetupE2EEnv(t, "development")
	defer dev.Cleanup()
	body, status, err := dev.GetPage("/api/locations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"locations":["BTM","Indiranagar","Koramangala 5th Block"]}`, body)
}

func TestE2E_CLI(t *testing.T) {
	env := SetupE2EEnv(t, "production")
	defer env.Cleanup()
	env.Backend.SetRecommendText(thaiText)

	out, code := env.RunCravings("search", "spicy", "thai")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "1. Thai House  ★ 4.3")

	out, code = env.RunCravings("cuisines")
	require.Equal(t, 0, code, out)
	assert.Equal(t, []string{"Chinese", "Italian", "Thai"}, strings.Fields(out))

	env.Backend.SetRecommendText("{broken")
	out, code = env.RunCravings("search", "thai")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "AI returned a malformed response. Please try again.")

	out, code = env.RunCravings("search", "--help-json")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"name": "min-rating"`)
}
