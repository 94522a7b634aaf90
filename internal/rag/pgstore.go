package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgStore keeps chunks in Postgres with a pgvector embedding column.
type PgStore struct {
	db         *pgxpool.Pool
	embeddings EmbeddingsClient
}

func NewPgStore(db *pgxpool.Pool, embeddings EmbeddingsClient) *PgStore {
	return &PgStore{db: db, embeddings: embeddings}
}

// EnsureSchema creates the extension and tables when missing. The vector
// column is sized after the embeddings client.
func (r *PgStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS doc_chunk (
			id         BIGSERIAL PRIMARY KEY,
			source     TEXT NOT NULL,
			page       INTEGER NOT NULL CHECK (page >= 1),
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS doc_chunk_embedding (
			chunk_id  BIGINT PRIMARY KEY REFERENCES doc_chunk(id),
			embedding vector(%d) NOT NULL
		)`, r.embeddings.Dimensions()),
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Add inserts all chunks in one transaction.
func (r *PgStore) Add(ctx context.Context, chunks []DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	vecs, err := embedAll(ctx, r.embeddings, chunkTexts(chunks))
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, c := range chunks {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO doc_chunk (source, page, content)
			VALUES ($1, $2, $3)
			RETURNING id
		`, c.Source, c.Page, c.Content).Scan(&id)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO doc_chunk_embedding (chunk_id, embedding)
			VALUES ($1, $2)
		`, id, pgvector.NewVector(vecs[i]))
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Search orders by cosine distance, ties by insertion order.
func (r *PgStore) Search(ctx context.Context, query string, k int) ([]DocChunk, error) {
	if k <= 0 {
		return nil, nil
	}
	vec, err := r.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.source, c.page, c.content, c.created_at
		FROM doc_chunk c
		JOIN doc_chunk_embedding e ON c.id = e.chunk_id
		ORDER BY e.embedding <=> $1, c.id
		LIMIT $2
	`, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []DocChunk
	for rows.Next() {
		var (
			c  DocChunk
			id int64
		)
		if err := rows.Scan(&id, &c.Source, &c.Page, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ID = strconv.FormatInt(id, 10)
		chunks = append(chunks, c)
	}

	return chunks, rows.Err()
}

func (r *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM doc_chunk`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ VectorStore = (*PgStore)(nil)
