package store

import (
	"context"
	"fmt"

	db "Mnemo/internal/database/neo4j"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jGraphStore implements GraphIndex directly against Neo4j, for
// deployments that run the graph database in-house instead of the HTTP
// ingestion service. Submitted texts are stored as Document nodes per user;
// downstream extraction jobs pick them up from there, so the pipeline-status
// view is simply the document inventory.
type Neo4jGraphStore struct {
	client *db.Neo4jClient
}

// NewNeo4jGraphStore creates a Neo4jGraphStore.
func NewNeo4jGraphStore(client *db.Neo4jClient) *Neo4jGraphStore {
	return &Neo4jGraphStore{client: client}
}

// Submit upserts a Document node for the text. MERGE keeps resubmission
// idempotent, which the reconciler relies on.
func (g *Neo4jGraphStore) Submit(ctx context.Context, userID, text string) error {
	_, err := g.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
		MERGE (d:Document {user_id: $user_id, text: $text})
		ON CREATE SET d.submitted_at = timestamp()
		`
		_, err := tx.Run(ctx, query, map[string]interface{}{
			"user_id": userID,
			"text":    text,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to submit document to neo4j: %w", err)
	}
	return nil
}

// Remove deletes the Document node for the text, detaching any extracted
// relationships hanging off it.
func (g *Neo4jGraphStore) Remove(ctx context.Context, userID, text string) error {
	_, err := g.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `
		MATCH (d:Document {user_id: $user_id, text: $text})
		DETACH DELETE d
		`
		_, err := tx.Run(ctx, query, map[string]interface{}{
			"user_id": userID,
			"text":    text,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to remove document from neo4j: %w", err)
	}
	return nil
}

// Status reports the total document count. A direct database is never
// "busy" from the caller's perspective.
func (g *Neo4jGraphStore) Status(ctx context.Context) (*PipelineStatus, error) {
	count, err := g.count(ctx, "MATCH (d:Document) RETURN count(d) AS n", nil)
	if err != nil {
		return nil, err
	}
	return &PipelineStatus{Busy: false, DocCount: count}, nil
}

// CountDocuments returns the per-user document count.
func (g *Neo4jGraphStore) CountDocuments(ctx context.Context, userID string) (int, error) {
	return g.count(ctx,
		"MATCH (d:Document {user_id: $user_id}) RETURN count(d) AS n",
		map[string]interface{}{"user_id": userID},
	)
}

// Query returns the texts of a user's documents matching the query string.
// Mode and topK narrow the scan; only "keyword" lookup is supported here,
// richer retrieval modes belong to the HTTP service.
func (g *Neo4jGraphStore) Query(ctx context.Context, userID, query, mode string, topK int) (string, error) {
	if topK <= 0 {
		topK = 10
	}
	result, err := g.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		cypher := `
		MATCH (d:Document {user_id: $user_id})
		WHERE toLower(d.text) CONTAINS toLower($query)
		RETURN d.text AS text
		LIMIT $limit
		`
		res, err := tx.Run(ctx, cypher, map[string]interface{}{
			"user_id": userID,
			"query":   query,
			"limit":   topK,
		})
		if err != nil {
			return nil, err
		}

		var texts string
		for res.Next(ctx) {
			if text, ok := res.Record().Get("text"); ok {
				if texts != "" {
					texts += "\n"
				}
				texts += text.(string)
			}
		}
		return texts, res.Err()
	})
	if err != nil {
		return "", fmt.Errorf("failed to query neo4j documents: %w", err)
	}
	return result.(string), nil
}

func (g *Neo4jGraphStore) count(ctx context.Context, cypher string, params map[string]interface{}) (int, error) {
	result, err := g.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, ok := record.Get("n")
		if !ok {
			return nil, fmt.Errorf("count query returned no 'n' column")
		}
		return n.(int64), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count neo4j documents: %w", err)
	}
	return int(result.(int64)), nil
}
