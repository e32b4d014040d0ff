// Package fragment persists résumé fragments as Redis hashes under an FT
// vector index and serves KNN retrieval over them.
package fragment

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/hirelens/hirelens/internal/db"
	"github.com/hirelens/hirelens/internal/domain"
)

// Collection is the logical collection name for résumé fragments.
const Collection = "resume_fragments"

const skillSeparator = ","

// store is the consumer interface for fragment persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements fragment persistence and retrieval.
type Repo struct {
	store store
	dim   int
}

// New creates a fragment repository. dim is the expected vector dimension.
func New(s store, dim int) *Repo {
	return &Repo{store: s, dim: dim}
}

// EnsureCollection creates the FT index for the fragment collection if it
// does not exist yet. Safe to call on every startup.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	idxName := indexName()

	exists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", idxName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     idxName,
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: "__content", Type: db.IndexFieldText},
			{Name: "name", Type: db.IndexFieldTag},
			{Name: "role", Type: db.IndexFieldTag},
			{Name: "skills", Type: db.IndexFieldTag, TagSeparator: skillSeparator},
			{
				Name:           "__vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      r.dim,
				VectorDistance: db.DistanceIP,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Concurrent startup may have won the race.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", idxName, err)
	}
	return nil
}

// Insert persists a single fragment under a fresh key.
func (r *Repo) Insert(ctx context.Context, frag *domain.Fragment) error {
	if len(frag.Vector) != r.dim {
		return fmt.Errorf("vector has %d dimensions, index expects %d: %w",
			len(frag.Vector), r.dim, domain.ErrVectorDimMismatch)
	}

	key := keyPrefix() + uuid.NewString()
	fields := map[string]string{
		"__content": frag.Text,
		"__vector":  string(vectorToBytes(frag.Vector)),
		"name":      frag.Name,
		"role":      frag.Role,
		"skills":    strings.Join(frag.Skills, skillSeparator),
	}

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset %s: %w: %w", key, err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Search returns up to limit fragments nearest to vector, best match first.
func (r *Repo) Search(ctx context.Context, vector []float32, limit int) ([]domain.RetrievedFragment, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(),
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{"__content", "name", "role", "skills"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", Collection, err, domain.ErrStoreUnavailable)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	out := make([]domain.RetrievedFragment, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		out = append(out, domain.RetrievedFragment{
			Text:   entry.Fields["__content"],
			Name:   entry.Fields["name"],
			Role:   entry.Fields["role"],
			Skills: splitSkills(entry.Fields["skills"]),
			Score:  entry.Score,
		})
	}
	return out, nil
}

func keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, Collection)
}

func indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, Collection)
}

func splitSkills(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, skillSeparator)
}

// vectorToBytes serializes []float32 to the binary layout FT.SEARCH expects.
func vectorToBytes(v []float32) []byte {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}
