package queue

import (
	"context"

	"github.com/dmitrijs2005/gophpos/internal/client/models"
)

// Repository is the queue contract consumed by the session and reconciler.
type Repository interface {
	Enqueue(ctx context.Context, a models.PendingAction) (models.PendingAction, error)
	ListPending(ctx context.Context, entity string) ([]models.PendingAction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, msg string) error
	CountPending(ctx context.Context, entity string) (int, error)
	List(ctx context.Context) ([]models.PendingAction, error)
}
