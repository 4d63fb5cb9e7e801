package services

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/hoevejo/hoeve-Family-picks/utils"
)

// pickUpdateQueue turns pick grades into batched field-path updates. Field
// paths are used (not dotted strings) because game ids are data, and only the
// isCorrect leaf of each prediction may be touched — user-authored fields on
// the same document stay intact.
type pickUpdateQueue struct {
	queue *utils.BatchQueue
}

func newPickUpdateQueue(client *firestore.Client) *pickUpdateQueue {
	return &pickUpdateQueue{queue: utils.NewBatchQueue(client)}
}

func (q *pickUpdateQueue) enqueue(ctx context.Context, ref *firestore.DocumentRef, g pickGrade) error {
	var updates []firestore.Update
	for gameID, v := range g.updates {
		var value any
		if v != nil {
			value = *v
		}
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"predictions", gameID, "isCorrect"},
			Value:     value,
		})
	}
	if g.writeWager && g.wagerResult != nil {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"wagerResult"},
			Value:     g.wagerResult,
		})
	}
	if len(updates) == 0 {
		return nil
	}
	return q.queue.Update(ctx, ref, updates)
}

func (q *pickUpdateQueue) flush(ctx context.Context) error {
	return q.queue.Flush(ctx)
}
