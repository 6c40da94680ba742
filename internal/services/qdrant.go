package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// VectorStore is the subset of Qdrant the experience index relies on.
type VectorStore interface {
	InitCollection(ctx context.Context) error
	Upsert(ctx context.Context, points []VectorPoint) error
	Search(ctx context.Context, vector []float32, userID string, limit int) ([]SearchResult, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type VectorPoint struct {
	ID      string
	Vector  []float32
	UserID  string
	Text    string
	Source  string
	Section string
}

type SearchResult struct {
	ID       string
	Score    float32
	Text     string
	Source   string
	Metadata map[string]interface{}
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

// embeddingSize matches text-embedding-004.
const embeddingSize = 768

func NewQdrantService(rawURL, apiKey, collectionName string) (VectorStore, error) {
	cfg, err := qdrantClientConfig(rawURL, apiKey)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     embeddingSize,
	}, nil
}

// qdrantClientConfig turns QDRANT_URL into a gRPC client config. A bare host
// is accepted, the port defaults to 6334 and https selects TLS.
func qdrantClientConfig(rawURL, apiKey string) (*qdrant.Config, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid Qdrant URL %q: missing host", rawURL)
	}

	port := 6334
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
	}

	return &qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	}, nil
}

// InitCollection implements VectorStore.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Every search and delete filters on user_id.
	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      "user_id",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index user_id payload: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// Upsert implements VectorStore. Point ids must be UUID strings.
func (q *qdrantService) Upsert(ctx context.Context, points []VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"user_id": p.UserID,
				"text":    p.Text,
				"source":  p.Source,
				"section": p.Section,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// Search implements VectorStore.
func (q *qdrantService) Search(ctx context.Context, vector []float32, userID string, limit int) ([]SearchResult, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter:         userFilter(userID),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResult))
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{
			ID:       point.GetId().GetUuid(),
			Score:    point.Score,
			Text:     payloadString(payload, "text"),
			Source:   payloadString(payload, "source"),
			Metadata: make(map[string]interface{}, len(payload)),
		}
		for key, value := range payload {
			result.Metadata[key] = value
		}

		results = append(results, result)
	}

	return results, nil
}

// DeleteByUser implements VectorStore.
func (q *qdrantService) DeleteByUser(ctx context.Context, userID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: userFilter(userID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete user points: %w", err)
	}

	return nil
}

func userFilter(userID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("user_id", userID),
		},
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return val.StringValue
		}
	}
	return ""
}
