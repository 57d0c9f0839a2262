package directions

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"truck-dispatch-service/internal/domain"
)

// ORSOptions configures the OpenRouteService client.
// RequestsPerMinute <= 0 disables client-side rate limiting.
type ORSOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client
}

// ORSDirectionsProvider implements DirectionsProvider using the
// OpenRouteService driving-hgv profile.
//
// It coordinates:
//   - Avoid-polygon encoding of exclusion zones
//   - Client-side rate limiting
//   - A single retry on transient failures
//
// The provider is safe for concurrent use and caches nothing.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
}

func NewORSDirectionsProvider(opts ORSOptions) (*ORSDirectionsProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &domain.ConfigurationError{Key: "ORS_API_KEY", Reason: "is required"}
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, &domain.ConfigurationError{Key: "ORS_BASE_URL", Reason: "is required"}
	}

	session := opts.HTTPClient
	if session == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		session = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &ORSDirectionsProvider{
		session: session,
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		limiter: limiter,
	}, nil
}
