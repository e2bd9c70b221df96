// Package qdrant persists corpus entries in a Qdrant collection over gRPC so
// that words added in one session are back in the corpus on the next start.
package qdrant

import (
	"context"
	"fmt"

	"github.com/dora-ryukyu/word2vec3d/corpus"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	labelKey    = "text"
	categoryKey = "category"

	// scrollPageSize bounds each Scroll call; GetAll follows the offsets.
	scrollPageSize = 256
)

// Client wraps gRPC connections to a Qdrant vector database instance.
type Client struct {
	connection        *grpc.ClientConn
	pointsClient      pb.PointsClient
	collectionsClient pb.CollectionsClient
	collectionName    string
	vectorSize        uint64
}

// Point represents a stored entry with its Qdrant id.
type Point struct {
	ID       string
	Label    string
	Category string
	Vector   []float32
}

// Entry converts the stored point back into a corpus entry.
func (p Point) Entry() corpus.Entry {
	return corpus.NewEntry(p.Label, p.Category, p.Vector)
}

// NewClient creates a new Qdrant client connected to the specified address.
// It initializes the gRPC connection and ensures the target collection exists,
// creating it with cosine distance if necessary.
func NewClient(ctx context.Context, address, collectionName string, vectorSize uint64) (*Client, error) {
	connection, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	client := &Client{
		connection:        connection,
		pointsClient:      pb.NewPointsClient(connection),
		collectionsClient: pb.NewCollectionsClient(connection),
		collectionName:    collectionName,
		vectorSize:        vectorSize,
	}

	if err := client.ensureCollectionExists(ctx); err != nil {
		connection.Close()
		return nil, err
	}

	return client, nil
}

// ensureCollectionExists checks if the target collection exists in Qdrant.
// If it doesn't exist, it creates a new collection configured for cosine similarity.
func (client *Client) ensureCollectionExists(ctx context.Context) error {
	_, err := client.collectionsClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: client.collectionName,
	})
	if err == nil {
		return nil
	}

	_, err = client.collectionsClient.Create(ctx, &pb.CreateCollection{
		CollectionName: client.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     client.vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", client.collectionName, err)
	}

	return nil
}

// Save stores an entry under a fresh UUID and returns that id.
func (client *Client) Save(ctx context.Context, entry corpus.Entry) (string, error) {
	pointID := uuid.NewString()
	if err := client.Upsert(ctx, pointID, entry); err != nil {
		return "", err
	}
	return pointID, nil
}

// Upsert inserts or replaces the point with the given UUID.
func (client *Client) Upsert(ctx context.Context, pointID string, entry corpus.Entry) error {
	if uint64(len(entry.Vector)) != client.vectorSize {
		return fmt.Errorf("upsert point %s: %w", pointID,
			&corpus.DimensionMismatchError{Got: len(entry.Vector), Want: int(client.vectorSize)})
	}

	_, err := client.pointsClient.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: client.collectionName,
		Points:         []*pb.PointStruct{pointStruct(pointID, entry)},
	})
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", pointID, err)
	}
	return nil
}

// GetAll scrolls through the whole collection. Qdrant returns points in id
// order, not insertion order.
func (client *Client) GetAll(ctx context.Context) ([]Point, error) {
	var (
		points []Point
		offset *pb.PointId
	)

	for {
		scrollResponse, err := client.pointsClient.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: client.collectionName,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
			Limit:          pb.PtrOf(uint32(scrollPageSize)),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll points: %w", err)
		}

		for _, retrievedPoint := range scrollResponse.Result {
			points = append(points, pointFromRetrieved(retrievedPoint))
		}

		offset = scrollResponse.NextPageOffset
		if offset == nil {
			return points, nil
		}
	}
}

// Close terminates the gRPC connection to the Qdrant server.
func (client *Client) Close() error {
	return client.connection.Close()
}

func pointStruct(pointID string, entry corpus.Entry) *pb.PointStruct {
	vector := make([]float32, len(entry.Vector))
	for i, value := range entry.Vector {
		vector[i] = float32(value)
	}

	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: vector},
			},
		},
		Payload: map[string]*pb.Value{
			labelKey:    {Kind: &pb.Value_StringValue{StringValue: entry.Label}},
			categoryKey: {Kind: &pb.Value_StringValue{StringValue: entry.Category}},
		},
	}
}

func pointFromRetrieved(retrievedPoint *pb.RetrievedPoint) Point {
	var point Point
	if uuid := retrievedPoint.GetId().GetUuid(); uuid != "" {
		point.ID = uuid
	}

	if labelPayload, exists := retrievedPoint.GetPayload()[labelKey]; exists {
		point.Label = labelPayload.GetStringValue()
	}
	if categoryPayload, exists := retrievedPoint.GetPayload()[categoryKey]; exists {
		point.Category = categoryPayload.GetStringValue()
	}

	if vectorData := retrievedPoint.GetVectors().GetVector(); vectorData != nil {
		point.Vector = vectorData.GetData()
	}

	return point
}
