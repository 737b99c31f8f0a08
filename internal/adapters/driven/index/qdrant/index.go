// Package qdrant provides a vector index backed by a Qdrant server.
//
// The configured collection name is served as an alias. Rebuild loads
// entries into a fresh staging collection and switches the alias in one
// atomic operation, so readers see either the previous contents or the
// new contents, never a partial build.
package qdrant

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	qd "github.com/qdrant/go-client/qdrant"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 6334
	DefaultCollection = "askdoc_chunks"

	upsertBatchSize = 128
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// Host is the Qdrant gRPC host (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey authenticates against a managed Qdrant instance. Optional.
	APIKey string

	// Collection is the served collection name (default: askdoc_chunks).
	// It is maintained as an alias over per-rebuild collections.
	Collection string
}

// Index stores chunk vectors in a Qdrant collection behind an alias.
type Index struct {
	client *qd.Client

	// alias is the name queries go through; each Rebuild points it at
	// a fresh backing collection.
	alias string
}

// New creates a Qdrant-backed index and verifies connectivity.
func New(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := qd.NewClient(&qd.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connect to qdrant: %v", domain.ErrIndex, err)
	}

	if _, err := client.HealthCheck(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: qdrant health check: %v", domain.ErrIndex, err)
	}

	return &Index{client: client, alias: cfg.Collection}, nil
}

// Rebuild loads the entries into a staging collection, then atomically
// repoints the alias at it and drops the previous backing collection.
func (i *Index) Rebuild(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: rebuild with no entries", domain.ErrIndex)
	}

	dims := len(entries[0].Vector)
	if dims == 0 {
		return fmt.Errorf("%w: entry %q has a zero-length vector", domain.ErrIndex, entries[0].Chunk.ID)
	}
	for _, e := range entries[1:] {
		if len(e.Vector) != dims {
			return fmt.Errorf("%w: mixed vector dimensions: %d and %d", domain.ErrConfig, dims, len(e.Vector))
		}
	}

	staging := stagingName(i.alias)
	if err := i.createCollection(ctx, staging, uint64(dims)); err != nil {
		return err
	}

	for start := 0; start < len(entries); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(entries))
		if err := i.upsertBatch(ctx, staging, entries[start:end]); err != nil {
			_ = i.client.DeleteCollection(ctx, staging)
			return err
		}
	}

	if err := i.switchAlias(ctx, staging); err != nil {
		_ = i.client.DeleteCollection(ctx, staging)
		return err
	}
	return nil
}

var stagingSeq atomic.Uint64

// stagingName derives a fresh backing collection name. The timestamp
// keeps names unique across process restarts, the sequence number
// within one.
func stagingName(alias string) string {
	return fmt.Sprintf("%s_%d_%d", alias, time.Now().UnixNano(), stagingSeq.Add(1))
}

func (i *Index) createCollection(ctx context.Context, name string, dims uint64) error {
	err := i.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: name,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     dims,
			Distance: qd.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: create collection: %v", domain.ErrIndex, err)
	}
	return nil
}

// switchAlias repoints the alias at the staging collection in a single
// alias-update call, then removes the superseded backing collection.
func (i *Index) switchAlias(ctx context.Context, staging string) error {
	previous, err := i.backingCollection(ctx)
	if err != nil {
		return err
	}

	// A plain collection carrying the alias's name (from an in-place
	// layout) blocks alias creation and has to go first.
	if previous == "" {
		exists, err := i.client.CollectionExists(ctx, i.alias)
		if err != nil {
			return fmt.Errorf("%w: check collection: %v", domain.ErrIndex, err)
		}
		if exists {
			if err := i.client.DeleteCollection(ctx, i.alias); err != nil {
				return fmt.Errorf("%w: drop collection: %v", domain.ErrIndex, err)
			}
		}
	}

	actions := make([]*qd.AliasOperations, 0, 2)
	if previous != "" {
		actions = append(actions, &qd.AliasOperations{
			Action: &qd.AliasOperations_DeleteAlias{
				DeleteAlias: &qd.DeleteAlias{AliasName: i.alias},
			},
		})
	}
	actions = append(actions, &qd.AliasOperations{
		Action: &qd.AliasOperations_CreateAlias{
			CreateAlias: &qd.CreateAlias{
				CollectionName: staging,
				AliasName:      i.alias,
			},
		},
	})
	if err := i.client.UpdateAliases(ctx, actions); err != nil {
		return fmt.Errorf("%w: switch alias: %v", domain.ErrIndex, err)
	}

	if previous != "" {
		// The alias no longer references it; leaving it behind only
		// wastes space, so cleanup failure is not a rebuild failure.
		_ = i.client.DeleteCollection(ctx, previous)
	}
	return nil
}

// backingCollection returns the collection the alias currently points
// at, or "" when the alias does not exist yet.
func (i *Index) backingCollection(ctx context.Context) (string, error) {
	aliases, err := i.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list aliases: %v", domain.ErrIndex, err)
	}
	for _, a := range aliases {
		if a.GetAliasName() == i.alias {
			return a.GetCollectionName(), nil
		}
	}
	return "", nil
}

func (i *Index) upsertBatch(ctx context.Context, collection string, entries []domain.IndexEntry) error {
	points := make([]*qd.PointStruct, 0, len(entries))
	for _, e := range entries {
		points = append(points, &qd.PointStruct{
			Id: &qd.PointId{
				PointIdOptions: &qd.PointId_Uuid{Uuid: e.Chunk.ID},
			},
			Vectors: &qd.Vectors{
				VectorsOptions: &qd.Vectors_Vector{
					Vector: &qd.Vector{Data: e.Vector},
				},
			},
			Payload: map[string]*qd.Value{
				"text":        qd.NewValueString(e.Chunk.Text),
				"source":      qd.NewValueString(e.Chunk.Source),
				"page":        qd.NewValueInt(int64(e.Chunk.Page)),
				"chunk_index": qd.NewValueInt(int64(e.Chunk.Index)),
			},
		})
	}

	wait := true
	_, err := i.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("%w: upsert points: %v", domain.ErrIndex, err)
	}
	return nil
}

// Query returns the k nearest chunks to the given vector.
func (i *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", domain.ErrIndex)
	}

	limit := uint64(k)
	points, err := i.client.Query(ctx, &qd.QueryPoints{
		CollectionName: i.alias,
		Query:          qd.NewQuery(vector...),
		WithPayload:    qd.NewWithPayload(true),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrIndex, err)
	}

	results := make([]domain.ScoredChunk, 0, len(points))
	for _, p := range points {
		results = append(results, domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:     pointID(p.Id),
				Text:   p.Payload["text"].GetStringValue(),
				Source: p.Payload["source"].GetStringValue(),
				Page:   int(p.Payload["page"].GetIntegerValue()),
				Index:  int(p.Payload["chunk_index"].GetIntegerValue()),
			},
			Score: float64(p.Score),
		})
	}
	return results, nil
}

func pointID(id *qd.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}

// Size returns the number of points behind the alias.
func (i *Index) Size(ctx context.Context) (int, error) {
	backing, err := i.backingCollection(ctx)
	if err != nil {
		return 0, err
	}
	if backing == "" {
		exists, err := i.client.CollectionExists(ctx, i.alias)
		if err != nil {
			return 0, fmt.Errorf("%w: check collection: %v", domain.ErrIndex, err)
		}
		if !exists {
			return 0, nil
		}
	}

	count, err := i.client.Count(ctx, &qd.CountPoints{
		CollectionName: i.alias,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: count points: %v", domain.ErrIndex, err)
	}
	return int(count), nil
}

// Close closes the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}
