package rag

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS doc_chunk (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL,
	page       INTEGER NOT NULL CHECK (page >= 1),
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	created_at TEXT NOT NULL
)`

const sqliteMetaSchema = `
CREATE TABLE IF NOT EXISTS store_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// ErrDimensionMismatch is returned when a persisted store was built with
// embeddings of another size than the current provider's.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// SQLiteStore persists chunks in <dir>/vectors.db and searches them by
// brute-force cosine similarity.
type SQLiteStore struct {
	db         *sql.DB
	embeddings EmbeddingsClient
}

// OpenSQLiteStore opens (or creates) the store under dir.
func OpenSQLiteStore(ctx context.Context, dir string, embeddings EmbeddingsClient) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection avoids "database is locked" under concurrent handlers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode=WAL", sqliteSchema, sqliteMetaSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
	}

	s := &SQLiteStore{db: db, embeddings: embeddings}
	if err := s.checkDimensions(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// checkDimensions records the embedding size on first open and refuses a
// different one afterwards.
func (s *SQLiteStore) checkDimensions(ctx context.Context) error {
	dim := s.embeddings.Dimensions()
	if dim <= 0 {
		return nil
	}

	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'dimensions'`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `INSERT INTO store_meta (key, value) VALUES ('dimensions', ?)`, strconv.Itoa(dim))
		if err != nil {
			return fmt.Errorf("recording embedding dimensions: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading embedding dimensions: %w", err)
	case stored != strconv.Itoa(dim):
		return fmt.Errorf("%w: store has %s, provider has %d", ErrDimensionMismatch, stored, dim)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, chunks []DocChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	vecs, err := embedAll(ctx, s.embeddings, chunkTexts(chunks))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO doc_chunk (id, source, page, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), c.Source, c.Page, c.Content, encodeFloat32s(vecs[i]), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %d of %s: %w", c.Page, c.Source, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Search(ctx context.Context, query string, k int) ([]DocChunk, error) {
	vec, err := s.embeddings.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM doc_chunk ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var (
		ids    []string
		scores []float64
	)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		emb, err := decodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for %s: %w", id, err)
		}
		if len(emb) != len(vec) {
			return nil, fmt.Errorf("%w: chunk %s has %d, query has %d", ErrDimensionMismatch, id, len(emb), len(vec))
		}
		ids = append(ids, id)
		scores = append(scores, cosine(vec, emb))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]DocChunk, 0, k)
	for _, i := range topK(scores, k) {
		c, err := s.get(ctx, ids[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *SQLiteStore) get(ctx context.Context, id string) (DocChunk, error) {
	var (
		c         DocChunk
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, source, page, content, created_at FROM doc_chunk WHERE id = ?`, id,
	).Scan(&c.ID, &c.Source, &c.Page, &c.Content, &createdAt)
	if err != nil {
		return DocChunk{}, fmt.Errorf("loading chunk %s: %w", id, err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM doc_chunk`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

var _ VectorStore = (*SQLiteStore)(nil)
