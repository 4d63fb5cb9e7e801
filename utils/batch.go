package utils

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// Firestore caps a write batch at 500 mutations; stay under it the way the
// original scheduler jobs did.
const batchLimit = 450

// BatchQueue accumulates Firestore writes and flushes them in bounded
// batches. Flushes are sequential; a failed commit is surfaced, not retried,
// because every queued mutation is idempotent and the whole job can simply be
// re-run.
type BatchQueue struct {
	client    *firestore.Client
	batch     *firestore.WriteBatch
	pending   int
	committed int
}

func NewBatchQueue(client *firestore.Client) *BatchQueue {
	return &BatchQueue{client: client}
}

func (q *BatchQueue) add(ctx context.Context) error {
	q.pending++
	if q.pending >= batchLimit {
		return q.Flush(ctx)
	}
	return nil
}

// Set queues a set (optionally with merge semantics).
func (q *BatchQueue) Set(ctx context.Context, ref *firestore.DocumentRef, data any, opts ...firestore.SetOption) error {
	if q.batch == nil {
		q.batch = q.client.Batch()
	}
	q.batch.Set(ref, data, opts...)
	return q.add(ctx)
}

// Update queues a field-path update.
func (q *BatchQueue) Update(ctx context.Context, ref *firestore.DocumentRef, updates []firestore.Update) error {
	if q.batch == nil {
		q.batch = q.client.Batch()
	}
	q.batch.Update(ref, updates)
	return q.add(ctx)
}

// Delete queues a delete.
func (q *BatchQueue) Delete(ctx context.Context, ref *firestore.DocumentRef) error {
	if q.batch == nil {
		q.batch = q.client.Batch()
	}
	q.batch.Delete(ref)
	return q.add(ctx)
}

// Flush commits whatever is queued.
func (q *BatchQueue) Flush(ctx context.Context) error {
	if q.batch == nil || q.pending == 0 {
		return nil
	}
	if _, err := q.batch.Commit(ctx); err != nil {
		return fmt.Errorf("batch commit failed after %d committed writes: %w", q.committed, err)
	}
	q.committed += q.pending
	q.pending = 0
	q.batch = nil
	return nil
}

// Committed reports how many writes have been committed so far.
func (q *BatchQueue) Committed() int {
	return q.committed
}
