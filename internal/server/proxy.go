package server

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/cloo-solutions/cravings/internal/api"
	"github.com/cloo-solutions/cravings/internal/api/middleware"
	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/sirupsen/logrus"
)

// NewBackendProxy forwards requests to the recommendation service unchanged.
// Callers strip the mount prefix, so /api/locations reaches <backend>/locations.
func NewBackendProxy(backendURL string, logger logrus.FieldLogger) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid backend url: %q", backendURL)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if id := middleware.GetRequestID(pr.In.Context()); id != "" {
				pr.Out.Header.Set(middleware.RequestIDHeader, id)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logging.FromContext(r.Context(), logger).WithError(err).WithField("path", r.URL.Path).Error("backend proxy failed")
			api.Error(w, http.StatusBadGateway, "recommendation service unavailable")
		},
	}
	return proxy, nil
}
