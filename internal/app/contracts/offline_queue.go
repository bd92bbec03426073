package contracts

import (
	"context"
	"primarycare-identity-service/internal/app/models"
)

type OfflineTransactionQueue interface {
	Enqueue(ctx context.Context, input *EnqueueOfflineTransactionInput) (*EnqueueOfflineTransactionOutput, error)
	FetchPending(ctx context.Context, input *FetchPendingInput) (*FetchPendingOutput, error)
	MarkUpdated(ctx context.Context, uuid string) error
	IncrementRetry(ctx context.Context, uuid string) error
	RecordProvisional(ctx context.Context, provisional *models.ProvisionalUpid) error
}

type OfflineTransactionNotifier interface {
	Notify(ctx context.Context, event *models.OfflineTransactionEvent) error
}

type EnqueueOfflineTransactionInput struct {
	Type           string
	Payload        models.OfflinePayload
	NationalIDType string
	NationalID     string
}

type EnqueueOfflineTransactionOutput struct {
	UUID string
}

type FetchPendingInput struct {
	Limit int64
}

type FetchPendingOutput struct {
	Transactions []models.OfflineTransaction
}
