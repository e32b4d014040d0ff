package fragment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hirelens/hirelens/internal/db"
	"github.com/hirelens/hirelens/internal/domain"
)

// --- EnsureCollection ---

func TestEnsureCollection_CreatesIndex(t *testing.T) {
	repo, ms := newTestRepo(t, 4)
	ctx := context.Background()

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureCollection(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if created.Name != "hirelens:resume_fragments:idx" {
		t.Errorf("unexpected index name: %s", created.Name)
	}
	if len(created.Prefixes) != 1 || created.Prefixes[0] != "hirelens:resume_fragments:" {
		t.Errorf("unexpected prefixes: %v", created.Prefixes)
	}

	var vecField *db.IndexField
	for i := range created.Fields {
		if created.Fields[i].Type == db.IndexFieldVector {
			vecField = &created.Fields[i]
		}
	}
	if vecField == nil {
		t.Fatal("expected a vector field in the schema")
	}
	if vecField.VectorDim != 4 {
		t.Errorf("expected DIM 4, got %d", vecField.VectorDim)
	}
	if vecField.VectorDistance != db.DistanceIP {
		t.Errorf("expected IP metric, got %s", vecField.VectorDistance)
	}
}

func TestEnsureCollection_IndexAlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t, 4)
	ctx := context.Background()

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return true, nil
	}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not be called when the index exists")
		return nil
	}

	if err := repo.EnsureCollection(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_CreateRaceLost(t *testing.T) {
	repo, ms := newTestRepo(t, 4)
	ctx := context.Background()

	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureCollection(ctx); err != nil {
		t.Fatalf("losing the create race must not be an error, got: %v", err)
	}
}

// --- Insert ---

func TestInsert_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t, 3)
	ctx := context.Background()

	var gotKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	frag := &domain.Fragment{
		Vector: []float32{0.1, 0.2, 0.3},
		Text:   "built payment infrastructure in Go",
		Name:   "Jane Doe",
		Role:   "Backend Engineer",
		Skills: []string{"Go", "Python"},
	}
	if err := repo.Insert(ctx, frag); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotKey, "hirelens:resume_fragments:") {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["__content"] != frag.Text {
		t.Errorf("unexpected content: %s", gotFields["__content"])
	}
	if gotFields["name"] != "Jane Doe" || gotFields["role"] != "Backend Engineer" {
		t.Errorf("unexpected metadata: %v", gotFields)
	}
	if gotFields["skills"] != "Go,Python" {
		t.Errorf("unexpected skills: %s", gotFields["skills"])
	}
	if len(gotFields["__vector"]) != 3*4 {
		t.Errorf("expected 12 vector bytes, got %d", len(gotFields["__vector"]))
	}
}

func TestInsert_UniqueKeys(t *testing.T) {
	repo, ms := newTestRepo(t, 3)
	ctx := context.Background()

	keys := make(map[string]bool)
	ms.hsetFn = func(_ context.Context, key string, _ map[string]string) error {
		keys[key] = true
		return nil
	}

	frag := &domain.Fragment{Vector: testVector(3), Text: "x"}
	for range 5 {
		if err := repo.Insert(ctx, frag); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(keys) != 5 {
		t.Fatalf("expected 5 distinct keys, got %d", len(keys))
	}
}

func TestInsert_DimensionMismatch(t *testing.T) {
	repo, ms := newTestRepo(t, 1536)
	ctx := context.Background()

	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		t.Fatal("HSet must not be called on dimension mismatch")
		return nil
	}

	frag := &domain.Fragment{Vector: testVector(3), Text: "x"}
	err := repo.Insert(ctx, frag)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

// --- Search ---

func TestSearch_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t, 3)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "hirelens:resume_fragments:idx" {
			t.Errorf("unexpected index: %s", q.IndexName)
		}
		if q.K != 10 {
			t.Errorf("unexpected K: %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "hirelens:resume_fragments:a",
					Score: 0.91,
					Fields: map[string]string{
						"__content": "led migration to Kubernetes",
						"name":      "Jane Doe",
						"role":      "Backend Engineer",
						"skills":    "Go,Python",
					},
				},
				{
					Key:   "hirelens:resume_fragments:b",
					Score: 0.42,
					Fields: map[string]string{
						"__content": "maintained legacy billing",
						"name":      "John Roe",
						"role":      "SRE",
						"skills":    "",
					},
				},
			},
		}, nil
	}

	got, err := repo.Search(ctx, testVector(3), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(got))
	}
	if got[0].Text != "led migration to Kubernetes" {
		t.Errorf("unexpected text: %s", got[0].Text)
	}
	if got[0].Score != 0.91 {
		t.Errorf("unexpected score: %f", got[0].Score)
	}
	if len(got[0].Skills) != 2 || got[0].Skills[0] != "Go" {
		t.Errorf("unexpected skills: %v", got[0].Skills)
	}
	if got[1].Skills != nil {
		t.Errorf("empty skills field must map to nil, got %v", got[1].Skills)
	}
}

func TestSearch_Empty(t *testing.T) {
	repo, ms := newTestRepo(t, 3)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 0}, nil
	}

	got, err := repo.Search(ctx, testVector(3), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result, got %v", got)
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t, 3)
	ctx := context.Background()

	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("connection refused")
	}

	_, err := repo.Search(ctx, testVector(3), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
