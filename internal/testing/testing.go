// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/curator/internal/models"
	"github.com/desertthunder/curator/internal/services"
	"github.com/desertthunder/curator/internal/shared"
)

// MockTaxonomy is a test double for [services.Taxonomy].
//
// Terms live in memory. Assignments for product ids in FailProducts return an error,
// and those in DeclineProducts return false.
type MockTaxonomy struct {
	mu              sync.Mutex
	nextID          int64
	terms           map[string]services.Term
	meta            map[int64]services.TermMeta
	Assigned        map[int64][]int64
	AssignCalls     int
	CreateCalls     int
	FailProducts    map[int64]bool
	DeclineProducts map[int64]bool
	CreateErr       error
	FindErr         error
}

// NewMockTaxonomy creates an empty in-memory taxonomy.
func NewMockTaxonomy() *MockTaxonomy {
	return &MockTaxonomy{
		nextID:          100,
		terms:           map[string]services.Term{},
		meta:            map[int64]services.TermMeta{},
		Assigned:        map[int64][]int64{},
		FailProducts:    map[int64]bool{},
		DeclineProducts: map[int64]bool{},
	}
}

// AddTerm seeds an existing term and returns its id.
func (m *MockTaxonomy) AddTerm(name, slug string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.terms[slug] = services.Term{ID: m.nextID, Name: name, Slug: slug}
	return m.nextID
}

func (m *MockTaxonomy) CreateTerm(ctx context.Context, name, slug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	m.terms[slug] = services.Term{ID: m.nextID, Name: name, Slug: slug}
	return m.nextID, nil
}

func (m *MockTaxonomy) FindTermBySlug(ctx context.Context, slug string) (*services.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if term, ok := m.terms[slug]; ok {
		return &term, nil
	}
	return nil, nil
}

func (m *MockTaxonomy) AssignProductToTerm(ctx context.Context, productID, termID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AssignCalls++
	if m.FailProducts[productID] {
		return false, fmt.Errorf("%w: assign product %d failed", shared.ErrAPIRequest, productID)
	}
	if m.DeclineProducts[productID] {
		return false, nil
	}
	m.Assigned[termID] = append(m.Assigned[termID], productID)
	return true, nil
}

func (m *MockTaxonomy) GetTaxonomyMeta(ctx context.Context, termID int64) (*services.TermMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := m.meta[termID]
	return &meta, nil
}

func (m *MockTaxonomy) SetTaxonomyMeta(ctx context.Context, termID int64, meta services.TermMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[termID] = meta
	return nil
}

func (m *MockTaxonomy) Name() string { return "mock" }

// MockCatalog is an in-memory catalog reader. Products are returned in slice order.
type MockCatalog struct {
	Products []models.CatalogProduct
	Err      error
	Calls    int
}

func (m *MockCatalog) FindCandidates(ctx context.Context, limit int) ([]models.CatalogProduct, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := []models.CatalogProduct{}
	for _, p := range m.Products {
		if len(out) >= limit {
			break
		}
		if p.InStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

// NewTestDB creates an in-memory SQLite database with migrations applied and closes it on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

var _ services.Taxonomy = (*MockTaxonomy)(nil)
