package index

import (
	"context"
	"fmt"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/clearpathhq/beacon/internal/chunk"
)

// QdrantStore implements Store against a remote Qdrant instance. It is the
// alternative to FlatStore for corpora too large to hold in process; Qdrant
// owns durability, so SaveFlat/LoadFlat do not apply to it.
type QdrantStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrant connects to Qdrant and ensures the collection exists with a
// dot-product distance, matching the normalized-vector scoring of FlatStore.
func NewQdrant(ctx context.Context, host string, port int, collection string, dim int) (*QdrantStore, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	s := &QdrantStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{Size: uint64(dim), Distance: pb.Distance_Dot},
			},
		},
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		conn.Close()
		return nil, fmt.Errorf("qdrant create collection: %w", err)
	}
	return s, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, entries []Entry) error {
	points := make([]*pb.PointStruct, len(entries))
	for i, e := range entries {
		points[i] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(e.Chunk.ID)}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: e.Vector}}},
			Payload: map[string]*pb.Value{
				"document_name": {Kind: &pb.Value_StringValue{StringValue: e.Chunk.DocumentName}},
				"text":          {Kind: &pb.Value_StringValue{StringValue: e.Chunk.Text}},
				"token_start":   {Kind: &pb.Value_IntegerValue{IntegerValue: int64(e.Chunk.TokenStart)}},
				"token_end":     {Kind: &pb.Value_IntegerValue{IntegerValue: int64(e.Chunk.TokenEnd)}},
			},
		}
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]Hit, len(resp.Result))
	for i, pt := range resp.Result {
		c := chunk.Chunk{ID: int(pt.Id.GetNum())}
		for k, v := range pt.Payload {
			switch k {
			case "document_name":
				c.DocumentName = v.GetStringValue()
			case "text":
				c.Text = v.GetStringValue()
			case "token_start":
				c.TokenStart = int(v.GetIntegerValue())
			case "token_end":
				c.TokenEnd = int(v.GetIntegerValue())
			}
		}
		hits[i] = Hit{Chunk: c, Score: pt.Score}
	}
	return hits, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *QdrantStore) Close() error { return s.conn.Close() }
