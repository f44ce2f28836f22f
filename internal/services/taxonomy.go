// Storefront taxonomy [Taxonomy] implementation
//
// Talks to the curator REST routes the storefront plugin registers under /wp-json/curator/v1.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/curator/internal/shared"
)

const (
	defaultTaxonomyBaseURL = "http://localhost:8080"
	defaultTaxonomyName    = "product_edit"
	taxonomyAPIPrefix      = "/wp-json/curator/v1"
)

// TaxonomyService implements [Taxonomy] over the storefront REST API.
//
// Requests authenticate with an application password (HTTP basic) or, when a client id is configured,
// OAuth2 client credentials.
type TaxonomyService struct {
	baseURL    string
	taxonomy   string
	username   string
	password   string
	httpClient *http.Client
}

// NewTaxonomyService creates a client from the taxonomy config section.
func NewTaxonomyService(cfg shared.TaxonomyConfig) *TaxonomyService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTaxonomyBaseURL
	}
	taxonomy := cfg.Taxonomy
	if taxonomy == "" {
		taxonomy = defaultTaxonomyName
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	svc := &TaxonomyService{
		baseURL:    baseURL,
		taxonomy:   taxonomy,
		username:   cfg.Username,
		password:   cfg.AppPassword,
		httpClient: &http.Client{Timeout: timeout},
	}

	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		svc.httpClient = cc.Client(context.Background())
		svc.httpClient.Timeout = timeout
	}

	return svc
}

// WithHTTPClient replaces the underlying client. Used by tests.
func (s *TaxonomyService) WithHTTPClient(client *http.Client) *TaxonomyService {
	s.httpClient = client
	return s
}

// Name returns the service name.
func (s *TaxonomyService) Name() string {
	return "Storefront Taxonomy"
}

func (s *TaxonomyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	apiURL := s.baseURL + taxonomyAPIPrefix + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("%w: taxonomy API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("%w: taxonomy API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CreateTerm creates a term in the configured taxonomy.
//
// Calls POST /terms.
func (s *TaxonomyService) CreateTerm(ctx context.Context, name, slug string) (int64, error) {
	payload := map[string]string{"taxonomy": s.taxonomy, "name": name, "slug": slug}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodPost, "/terms", payload, &created); err != nil {
		return 0, err
	}
	if created.ID <= 0 {
		return 0, fmt.Errorf("%w: create term returned no id", shared.ErrAPIRequest)
	}

	return created.ID, nil
}

// FindTermBySlug looks a term up by slug.
//
// Calls GET /terms?taxonomy=&slug=.
func (s *TaxonomyService) FindTermBySlug(ctx context.Context, slug string) (*Term, error) {
	query := url.Values{}
	query.Set("taxonomy", s.taxonomy)
	query.Set("slug", slug)

	var terms []Term
	if err := s.doRequest(ctx, http.MethodGet, "/terms?"+query.Encode(), nil, &terms); err != nil {
		return nil, err
	}

	for _, term := range terms {
		if term.Slug == slug {
			return &term, nil
		}
	}
	return nil, nil
}

// AssignProductToTerm attaches a product to a term.
//
// Calls POST /terms/{id}/products.
func (s *TaxonomyService) AssignProductToTerm(ctx context.Context, productID, termID int64) (bool, error) {
	var result struct {
		Success bool `json:"success"`
	}

	endpoint := fmt.Sprintf("/terms/%d/products", termID)
	if err := s.doRequest(ctx, http.MethodPost, endpoint, map[string]int64{"product_id": productID}, &result); err != nil {
		return false, err
	}

	return result.Success, nil
}

// GetTaxonomyMeta reads a term's SEO copy.
//
// Calls GET /terms/{id}/meta.
func (s *TaxonomyService) GetTaxonomyMeta(ctx context.Context, termID int64) (*TermMeta, error) {
	var meta TermMeta
	if err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/terms/%d/meta", termID), nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SetTaxonomyMeta writes a term's SEO copy.
//
// Calls PUT /terms/{id}/meta.
func (s *TaxonomyService) SetTaxonomyMeta(ctx context.Context, termID int64, meta TermMeta) error {
	return s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/terms/%d/meta", termID), meta, nil)
}
