package exercise

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/pose-coach/internal/pose"
	"github.com/qdrant/go-client/qdrant"
)

const collectionName = "exercises"

var ErrIndexUnavailable = errors.New("qdrant client not configured")

// Index stores one mean descriptor per exercise so an unlabeled upload can
// be matched to the closest routine.
type Index struct {
	qdrant *qdrant.Client
	width  int
}

func NewIndex(client *qdrant.Client, skeleton pose.Skeleton) *Index {
	return &Index{qdrant: client, width: skeleton.DescriptorWidth()}
}

func (i *Index) EnsureCollection(ctx context.Context) error {
	if i.qdrant == nil {
		return ErrIndexUnavailable
	}

	exists, err := i.qdrant.CollectionExists(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}

	return i.qdrant.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.width),
			Distance: qdrant.Distance_Euclid,
		}),
	})
}

func (i *Index) Upsert(ctx context.Context, exerciseID string, seq pose.DescriptorSequence) error {
	if i.qdrant == nil {
		return ErrIndexUnavailable
	}

	vec, err := i.vector(seq.Mean())
	if err != nil {
		return err
	}

	_, err = i.qdrant.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(exerciseID),
				Vectors: qdrant.NewVectors(vec...),
			},
		},
	})
	return err
}

// Nearest returns the ID of the exercise whose reference is closest to seq.
func (i *Index) Nearest(ctx context.Context, seq pose.DescriptorSequence) (string, error) {
	if i.qdrant == nil {
		return "", ErrIndexUnavailable
	}

	vec, err := i.vector(seq.Mean())
	if err != nil {
		return "", err
	}

	results, err := i.qdrant.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(1)),
	})
	if err != nil {
		return "", err
	}

	for _, r := range results {
		if r.Id != nil {
			if id := r.Id.GetUuid(); id != "" {
				return id, nil
			}
		}
	}
	return "", nil
}

func (i *Index) vector(d pose.Descriptor) ([]float32, error) {
	if len(d) != i.width {
		return nil, fmt.Errorf("descriptor width %d does not match index width %d", len(d), i.width)
	}
	if !d.Finite() {
		return nil, fmt.Errorf("descriptor contains non-finite values")
	}
	out := make([]float32, len(d))
	for j, v := range d {
		out[j] = float32(v)
	}
	return out, nil
}
