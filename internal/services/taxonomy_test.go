package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/curator/internal/shared"
)

func newTestTaxonomy(t *testing.T, handler http.HandlerFunc) *TaxonomyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTaxonomyService(shared.TaxonomyConfig{
		BaseURL:     server.URL,
		Taxonomy:    "product_edit",
		Username:    "curator",
		AppPassword: "secret",
	})
}

func TestTaxonomyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewTaxonomyService", func(t *testing.T) {
		t.Run("applies defaults", func(t *testing.T) {
			svc := NewTaxonomyService(shared.TaxonomyConfig{})
			if svc.baseURL != defaultTaxonomyBaseURL {
				t.Errorf("expected baseURL %s, got %s", defaultTaxonomyBaseURL, svc.baseURL)
			}
			if svc.taxonomy != defaultTaxonomyName {
				t.Errorf("expected taxonomy %s, got %s", defaultTaxonomyName, svc.taxonomy)
			}
			if svc.httpClient.Timeout <= 0 {
				t.Error("expected a request timeout")
			}
		})

		t.Run("uses client credentials when configured", func(t *testing.T) {
			svc := NewTaxonomyService(shared.TaxonomyConfig{
				ClientID:     "id",
				ClientSecret: "secret",
				TokenURL:     "http://localhost/token",
			})
			if svc.httpClient == http.DefaultClient {
				t.Error("expected a dedicated oauth2 client")
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewTaxonomyService(shared.TaxonomyConfig{}); svc.Name() != "Storefront Taxonomy" {
			t.Errorf("unexpected name %s", svc.Name())
		}
	})

	t.Run("CreateTerm", func(t *testing.T) {
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/wp-json/curator/v1/terms" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "curator" || pass != "secret" {
				t.Error("expected basic auth credentials")
			}

			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
				return
			}
			if body["taxonomy"] != "product_edit" || body["name"] != "Date Night" || body["slug"] != "date-night" {
				t.Errorf("unexpected body %v", body)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]int64{"id": 314})
		})

		id, err := svc.CreateTerm(ctx, "Date Night", "date-night")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != 314 {
			t.Errorf("expected id 314, got %d", id)
		}
	})

	t.Run("CreateTermMissingID", func(t *testing.T) {
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		if _, err := svc.CreateTerm(ctx, "Date Night", "date-night"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("FindTermBySlug", func(t *testing.T) {
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("slug") != "date-night" || r.URL.Query().Get("taxonomy") != "product_edit" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode([]Term{
				{ID: 1, Name: "Date Night Out", Slug: "date-night-out"},
				{ID: 2, Name: "Date Night", Slug: "date-night"},
			})
		})

		term, err := svc.FindTermBySlug(ctx, "date-night")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if term == nil || term.ID != 2 {
			t.Fatalf("expected exact slug match with id 2, got %+v", term)
		}
	})

	t.Run("FindTermBySlugAbsent", func(t *testing.T) {
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

		term, err := svc.FindTermBySlug(ctx, "date-night")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if term != nil {
			t.Errorf("expected nil term, got %+v", term)
		}
	})

	t.Run("AssignProductToTerm", func(t *testing.T) {
		var calls atomic.Int32
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path != "/wp-json/curator/v1/terms/314/products" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			var body map[string]int64
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]bool{"success": body["product_id"] != 13})
		})

		ok, err := svc.AssignProductToTerm(ctx, 7, 314)
		if err != nil || !ok {
			t.Fatalf("expected success, got ok=%v err=%v", ok, err)
		}

		ok, err = svc.AssignProductToTerm(ctx, 13, 314)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected declined assignment to report false")
		}
		if calls.Load() != 2 {
			t.Errorf("expected 2 calls, got %d", calls.Load())
		}
	})

	t.Run("ErrorMessage", func(t *testing.T) {
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"code":"rest_forbidden","message":"Sorry, you are not allowed to do that."}`))
		})

		_, err := svc.AssignProductToTerm(ctx, 7, 314)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "not allowed") {
			t.Errorf("expected message in error, got %v", err)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		svc := NewTaxonomyService(shared.TaxonomyConfig{BaseURL: "http://127.0.0.1:1"})
		if _, err := svc.FindTermBySlug(ctx, "x"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Meta", func(t *testing.T) {
		stored := TermMeta{}
		svc := newTestTaxonomy(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/wp-json/curator/v1/terms/5/meta" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			switch r.Method {
			case http.MethodPut:
				json.NewDecoder(r.Body).Decode(&stored)
				w.WriteHeader(http.StatusNoContent)
			case http.MethodGet:
				json.NewEncoder(w).Encode(stored)
			}
		})

		want := TermMeta{Description: "Evening looks", MetaDescription: "Shop date night outfits"}
		if err := svc.SetTaxonomyMeta(ctx, 5, want); err != nil {
			t.Fatalf("SetTaxonomyMeta failed: %v", err)
		}

		got, err := svc.GetTaxonomyMeta(ctx, 5)
		if err != nil {
			t.Fatalf("GetTaxonomyMeta failed: %v", err)
		}
		if *got != want {
			t.Errorf("expected %+v, got %+v", want, *got)
		}
	})
}
