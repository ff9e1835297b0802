package palette

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds a single catalog request.
const DefaultHTTPTimeout = 20 * time.Second

// maxCatalogBytes caps the response body read from a catalog API.
const maxCatalogBytes = 32 << 20

// HTTPSource fetches the palette from a catalog API at
// <BaseURL>/pantone_colors. The response may be a bare array of rows or an
// object wrapping them under "items", "results" or "data".
type HTTPSource struct {
	BaseURL string
	APIKey  string // sent as a bearer token when set
	Client  *http.Client
}

// NewHTTPSource returns an HTTPSource with a client using DefaultHTTPTimeout.
func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: DefaultHTTPTimeout},
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

func (s *HTTPSource) Load(ctx context.Context) ([]Entry, error) {
	base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: catalog URL is empty", ErrNoSource)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/pantone_colors", nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching catalog: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	return decodeJSON(body)
}
