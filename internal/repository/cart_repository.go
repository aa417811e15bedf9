package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	selectPayloadForUpdate = `SELECT payload FROM cart_records WHERE record_key = $1 FOR UPDATE`

	selectPayload = `SELECT payload FROM cart_records WHERE record_key = $1`

	upsertRecord = `
INSERT INTO cart_records (record_key, payload)
VALUES ($1, $2::jsonb)
ON CONFLICT (record_key) DO UPDATE
SET payload    = EXCLUDED.payload,
    version    = cart_records.version + 1,
    updated_at = now()`

	deleteRecord = `DELETE FROM cart_records WHERE record_key = $1`

	selectVersion = `SELECT version FROM cart_records WHERE record_key = $1`
)

type cartRepository struct {
	q    querier
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartStorage {
	return &cartRepository{
		q:    pool,
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartStorage {
	return &cartRepository{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) Load(ctx context.Context, key string) ([]domain.CartLine, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var payload []byte
	err := r.q.QueryRow(ctx, selectPayload, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("q.QueryRow: %w", err)
	}

	lines, err := DecodeLines(payload)
	if err != nil {
		return nil, fmt.Errorf("DecodeLines: %w", err)
	}

	return lines, nil
}

// Save replaces the record. An unchanged payload leaves the version as is.
func (r *cartRepository) Save(ctx context.Context, key string, lines []domain.CartLine) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	payload, err := EncodeLines(lines)
	if err != nil {
		return fmt.Errorf("EncodeLines: %w", err)
	}

	_, err = withTx(ctx, r.pool, r.q, func(q querier) (struct{}, error) {
		var current []byte
		err := q.QueryRow(ctx, selectPayloadForUpdate, key).Scan(&current)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return struct{}{}, fmt.Errorf("q.QueryRow: %w", err)
		case samePayload(current, payload):
			return struct{}{}, nil
		}

		if _, err := q.Exec(ctx, upsertRecord, key, string(payload)); err != nil {
			return struct{}{}, fmt.Errorf("q.Exec: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *cartRepository) Delete(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key is empty")
	}

	tag, err := r.q.Exec(ctx, deleteRecord, key)
	if err != nil {
		return false, fmt.Errorf("q.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Version returns how many times the record content changed, 0 if absent.
func Version(ctx context.Context, pool *pgxpool.Pool, key string) (int64, error) {
	var version int64
	err := pool.QueryRow(ctx, selectVersion, key).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pool.QueryRow: %w", err)
	}
	return version, nil
}

// EncodeLines is the durable record format shared by all storages.
func EncodeLines(lines []domain.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return json.Marshal(lines)
}

func DecodeLines(payload []byte) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		return []domain.CartLine{}, nil
	}
	return lines, nil
}

// samePayload compares by re-encoding the stored document since jsonb
// reorders keys and normalizes whitespace.
func samePayload(stored, payload []byte) bool {
	lines, err := DecodeLines(stored)
	if err != nil {
		return false
	}
	reencoded, err := EncodeLines(lines)
	if err != nil {
		return false
	}
	return bytes.Equal(reencoded, payload)
}
