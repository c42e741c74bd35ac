//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// E2ETestEnv holds the binaries, a fake recommendation service and a running cravingsd.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Backend    *FakeBackend
	BackendSrv *httptest.Server
	BinaryDir  string
	ServerURL  string
	HTTPClient *http.Client

	server *exec.Cmd
	cancel context.CancelFunc
}

// FakeBackend stands in for the recommendation service.
type FakeBackend struct {
	mu             sync.Mutex
	RecommendText  string
	RecommendCalls int
}

func (f *FakeBackend) SetRecommendText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RecommendText = text
}

func (f *FakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/locations":
		_, _ = w.Write([]byte(`{"locations":["BTM","Indiranagar","Koramangala 5th Block"]}`))
	case "/cuisines":
		_, _ = w.Write([]byte(`{"cuisines":["Chinese","Italian","Thai"]}`))
	case "/recommend":
		f.mu.Lock()
		f.RecommendCalls++
		text := f.RecommendText
		f.mu.Unlock()
		body, _ := json.Marshal(map[string]interface{}{
			"recommendation_text": text,
			"parsed_filters":      map[string]interface{}{"location": "koramangala", "cuisine": "thai"},
			"restaurant_count":    1,
		})
		_, _ = w.Write(body)
	case "/health":
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	default:
		http.NotFound(w, r)
	}
}

// SetupE2EEnv builds the binaries, starts the fake backend and launches cravingsd.
func SetupE2EEnv(t *testing.T, environment string) *E2ETestEnv {
	ctx, cancel := context.WithCancel(context.Background())

	backend := &FakeBackend{}
	backendSrv := httptest.NewServer(backend)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Backend:    backend,
		BackendSrv: backendSrv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second, Jar: jar},
		cancel:     cancel,
	}

	env.BuildBinaries()
	env.startServer(environment)
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	e.cancel()
	if e.server != nil {
		_ = e.server.Wait()
	}
	if e.BackendSrv != nil {
		e.BackendSrv.Close()
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the cravings and cravingsd binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "cravings-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"cravingsd", "cravings"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

func (e *E2ETestEnv) startServer(environment string) {
	port, err := getFreePort()
	if err != nil {
		e.T.Fatalf("failed to get free port: %v", err)
	}

	cmd := exec.CommandContext(e.Ctx, filepath.Join(e.BinaryDir, "cravingsd"), "serve")
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("CRAVINGS_PORT=%d", port),
		"CRAVINGS_BACKEND_URL="+e.BackendSrv.URL,
		"CRAVINGS_ENVIRONMENT="+environment,
		"CRAVINGS_SEARCH_RATE=0",
		"CRAVINGS_LOG_LEVEL=warn",
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		e.T.Fatalf("failed to start cravingsd: %v", err)
	}
	e.server = cmd
	e.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(e.ServerURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	e.T.Fatalf("cravingsd did not become healthy at %s", e.ServerURL)
}

// RunCravings runs the cravings CLI against the fake backend.
func (e *E2ETestEnv) RunCravings(args ...string) (string, int) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "cravings"), args...)
	cmd.Env = append(os.Environ(),
		"CRAVINGS_BACKEND_URL="+e.BackendSrv.URL,
		"XDG_CONFIG_HOME="+e.T.TempDir(),
		"HOME="+e.T.TempDir(),
	)
	out, err := cmd.CombinedOutput()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return string(out), exitErr.ExitCode()
	}
	if err != nil {
		e.T.Fatalf("failed to run cravings: %v", err)
	}
	return string(out), 0
}

// APIResponse represents a standard API response
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body)
}

// GetPage fetches an HTML page with the session cookie.
func (e *E2ETestEnv) GetPage(path string) (string, int, error) {
	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode, err
}

// PostForm submits the search form with the session cookie.
func (e *E2ETestEnv) PostForm(path string, form map[string]string) (string, int, error) {
	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+strings.ReplaceAll(v, " ", "+"))
	}
	resp, err := e.HTTPClient.Post(e.ServerURL+path, "application/x-www-form-urlencoded", strings.NewReader(strings.Join(values, "&")))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode, err
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := APIResponse{Status: resp.StatusCode}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return &apiResp, nil
}

func getFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
