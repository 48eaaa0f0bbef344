package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// pointsAPI is the slice of pb.PointsClient the store actually calls.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Delete(ctx context.Context, in *pb.DeletePoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
}

// collectionsAPI is the slice of pb.CollectionsClient the store actually calls.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// RemoteStore is a Qdrant-backed store implementing the same Add/Search
// contract as Store. It is selected when the index must outlive the process;
// the collection uses Euclid distance so scores compare like Hit.Distance.
type RemoteStore struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
	collection  string
	embed       Embedder
}

// NewRemote creates a RemoteStore connected to Qdrant at the given gRPC
// address.
func NewRemote(addr, collection string, embed Embedder) (*RemoteStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	return &RemoteStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		embed:       embed,
	}, nil
}

// Close closes the underlying gRPC connection.
func (r *RemoteStore) Close() error {
	return r.conn.Close()
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *RemoteStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := r.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == r.collection {
			return nil
		}
	}

	_, err = r.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Euclid,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", r.collection, err)
	}
	return nil
}

// Clear removes every point in the collection. The engine serves one video
// at a time, so re-ingestion empties the collection outright rather than
// deleting by video: a filtered delete would leave other videos' chunks
// behind to surface in unfiltered searches.
func (r *RemoteStore) Clear(ctx context.Context) error {
	wait := true
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				// An empty filter matches all points.
				Filter: &pb.Filter{},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: clear collection %s: %w", r.collection, err)
	}
	return nil
}

// AddChunks embeds and upserts transcript chunks for a video. Point IDs are
// UUIDv5 of video id + chunk position, so re-ingesting the same video
// overwrites rather than duplicates.
func (r *RemoteStore) AddChunks(ctx context.Context, videoID string, texts []string) error {
	if len(texts) == 0 {
		return nil
	}
	vecs, err := r.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("semantic: embed %d texts: %w", len(texts), err)
	}

	points := make([]*pb.PointStruct, len(texts))
	for i, text := range texts {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s-%d", videoID, i))).String()
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vecs[i]}},
			},
			Payload: map[string]*pb.Value{
				"text":        {Kind: &pb.Value_StringValue{StringValue: text}},
				"video_id":    {Kind: &pb.Value_StringValue{StringValue: videoID}},
				"chunk_index": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}},
			},
		}
	}

	wait := true
	_, err = r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Replace re-ingests a video: the collection is emptied so every chunk of
// the previous video goes away, then the new chunks are upserted. A new
// ingestion fully displaces the old one; searches never mix transcripts.
func (r *RemoteStore) Replace(ctx context.Context, videoID string, texts []string) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	return r.AddChunks(ctx, videoID, texts)
}

// Search embeds the query and performs k-NN search in Qdrant. Scores come
// back as Euclid distances, ascending, matching the in-memory store.
func (r *RemoteStore) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("semantic: k must be positive, got %d", k)
	}
	qvec, err := r.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w", err)
	}

	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         qvec,
		Limit:          uint64(k),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: search: %w", err)
	}

	hits := make([]Hit, len(resp.GetResult()))
	for i, res := range resp.GetResult() {
		hits[i] = Hit{
			Text:     res.GetPayload()["text"].GetStringValue(),
			Distance: res.GetScore(),
		}
	}
	return hits, nil
}
