package repository

import (
	"context"
	"fmt"
	"time"
)

// IdempotencyRecord mirrors one row of idempotency_keys.
type IdempotencyRecord struct {
	IdempotencyKey string
	RequestHash    string
	Method         string
	Path           string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	InProgress     bool
	CreatedAt      time.Time
}

func (q *Queries) GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyRecord, error) {
	rec := &IdempotencyRecord{}
	err := q.db.QueryRow(ctx, `
		SELECT idempotency_key, request_hash, method, path, response_status, response_body, content_type, in_progress, created_at
		FROM idempotency_keys WHERE idempotency_key = $1`, key).
		Scan(&rec.IdempotencyKey, &rec.RequestHash, &rec.Method, &rec.Path,
			&rec.ResponseStatus, &rec.ResponseBody, &rec.ContentType, &rec.InProgress, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ReserveIdempotencyKey claims a key for the in-flight request. The insert
// is a no-op when the key already exists; callers detect that via the
// returned row count.
func (q *Queries) ReserveIdempotencyKey(ctx context.Context, key, requestHash, method, path string) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		INSERT INTO idempotency_keys (idempotency_key, request_hash, method, path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		key, requestHash, method, path)
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", mapStoreError(err))
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) FinalizeIdempotencyKey(ctx context.Context, key, requestHash string, status int32, body []byte, contentType string) (*IdempotencyRecord, error) {
	rec := &IdempotencyRecord{}
	err := q.db.QueryRow(ctx, `
		UPDATE idempotency_keys
		SET response_status = $1, response_body = $2, content_type = $3, in_progress = FALSE, completed_at = now()
		WHERE idempotency_key = $4 AND request_hash = $5
		RETURNING idempotency_key, request_hash, method, path, response_status, response_body, content_type, in_progress, created_at`,
		status, body, contentType, key, requestHash).
		Scan(&rec.IdempotencyKey, &rec.RequestHash, &rec.Method, &rec.Path,
			&rec.ResponseStatus, &rec.ResponseBody, &rec.ContentType, &rec.InProgress, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
