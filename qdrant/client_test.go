package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// fakePoints serves Scroll from memory in pages of pageSize and records upserts.
type fakePoints struct {
	pb.PointsClient
	stored   []*pb.RetrievedPoint
	pageSize int
	scrolls  int
	upserted []*pb.PointStruct
}

func (f *fakePoints) Scroll(_ context.Context, in *pb.ScrollPoints, _ ...grpc.CallOption) (*pb.ScrollResponse, error) {
	f.scrolls++
	start := 0
	if in.Offset != nil {
		for i, point := range f.stored {
			if point.Id.GetUuid() == in.Offset.GetUuid() {
				start = i
			}
		}
	}
	end := min(start+f.pageSize, len(f.stored))
	response := &pb.ScrollResponse{Result: f.stored[start:end]}
	if end < len(f.stored) {
		response.NextPageOffset = f.stored[end].Id
	}
	return response, nil
}

func (f *fakePoints) Upsert(_ context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	f.upserted = append(f.upserted, in.Points...)
	return &pb.PointsOperationResponse{}, nil
}

func retrieved(id, label, category string, vector []float32) *pb.RetrievedPoint {
	stored := pointStruct(id, corpus.NewEntry(label, category, vector))
	return &pb.RetrievedPoint{
		Id:      stored.Id,
		Payload: stored.Payload,
		Vectors: &pb.VectorsOutput{
			VectorsOptions: &pb.VectorsOutput_Vector{Vector: &pb.VectorOutput{Data: vector}},
		},
	}
}

func TestPointConversion(t *testing.T) {
	point := pointFromRetrieved(retrieved("a1", "apple", "fruit", []float32{0.5, -1}))

	assert.Equal(t, Point{ID: "a1", Label: "apple", Category: "fruit", Vector: []float32{0.5, -1}}, point)

	entry := point.Entry()
	assert.Equal(t, "apple", entry.Label)
	assert.Equal(t, corpus.Vector{0.5, -1}, entry.Vector)
}

func TestGetAll_FollowsOffsets(t *testing.T) {
	fake := &fakePoints{pageSize: 2}
	for i, label := range []string{"a", "b", "c", "d", "e"} {
		fake.stored = append(fake.stored, retrieved(label, label, "input", []float32{float32(i)}))
	}
	client := &Client{pointsClient: fake, collectionName: "embeddings", vectorSize: 1}

	points, err := client.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, "e", points[4].Label)
	assert.Equal(t, 3, fake.scrolls)
}

func TestSave(t *testing.T) {
	fake := &fakePoints{}
	client := &Client{pointsClient: fake, collectionName: "embeddings", vectorSize: 2}

	id, err := client.Save(context.Background(), corpus.NewEntry("dog", "animals", []float32{1, 2}))
	require.NoError(t, err)
	assert.Len(t, id, 36)
	require.Len(t, fake.upserted, 1)
	assert.Equal(t, id, fake.upserted[0].Id.GetUuid())
	assert.Equal(t, "animals", fake.upserted[0].Payload[categoryKey].GetStringValue())
}

func TestUpsert_WrongDimension(t *testing.T) {
	client := &Client{pointsClient: &fakePoints{}, collectionName: "embeddings", vectorSize: 3}

	err := client.Upsert(context.Background(), "id", corpus.NewEntry("dog", "animals", []float32{1, 2}))
	var mismatch *corpus.DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 3, mismatch.Want)
}
