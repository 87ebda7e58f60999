package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const defaultHTTPTimeout = 8 * time.Second

// HTTPSource fetches the catalog JSON from a static host.
type HTTPSource struct {
	baseURL string
	http    *http.Client
}

// NewHTTPSource constructs a source rooted at baseURL (e.g. https://cdn.example/data).
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    client,
	}
}

// Municipalities implements Source.
func (s *HTTPSource) Municipalities(ctx context.Context) ([]Municipality, error) {
	ctx, span := startSpan(ctx, "catalog.HTTPSource.Municipalities")
	defer span.End()

	var list []Municipality
	if err := s.get(ctx, &list, municipalitiesResource+".json"); err != nil {
		recordError(span, err)
		return nil, err
	}
	return NormalizeMunicipalities(list), nil
}

// Shops implements Source.
func (s *HTTPSource) Shops(ctx context.Context, municipalityID string) ([]Shop, error) {
	ctx, span := startSpan(ctx, "catalog.HTTPSource.Shops", attribute.String("municipality.id", municipalityID))
	defer span.End()

	id, err := resourceID(municipalityID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	var list []Shop
	if err := s.get(ctx, &list, shopsDir, id+".json"); err != nil {
		recordError(span, err)
		return nil, err
	}
	return NormalizeShops(list), nil
}

func (s *HTTPSource) get(ctx context.Context, out any, elem ...string) error {
	if s == nil || s.baseURL == "" {
		return fmt.Errorf("catalog: http source not configured")
	}
	endpoint, err := url.JoinPath(s.baseURL, elem...)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	}
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("catalog: fetch %s: status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", endpoint, err)
	}
	return nil
}
