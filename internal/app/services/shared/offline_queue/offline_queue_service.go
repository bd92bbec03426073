package offline_queue

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	offlineQueueInstance contracts.OfflineTransactionQueue
	onceOfflineQueue     sync.Once
)

// Service is the durable log of deferred remote writes. Mongo is the source
// of truth; the notifier only wakes the external drain.
type Service struct {
	Transactions *mongo.Collection
	Provisionals *mongo.Collection
	Notifier     contracts.OfflineTransactionNotifier
	Metrics      contracts.GatewayMetrics
	Log          *zap.Logger
	now          func() time.Time
}

func NewOfflineTransactionQueue(db *mongo.Database, notifier contracts.OfflineTransactionNotifier, metrics contracts.GatewayMetrics, logger *zap.Logger) contracts.OfflineTransactionQueue {
	onceOfflineQueue.Do(func() {
		offlineQueueInstance = newService(
			db.Collection(constvars.MongoCollectionOfflineTransactions),
			db.Collection(constvars.MongoCollectionProvisionalUpids),
			notifier,
			metrics,
			logger,
		)
	})
	return offlineQueueInstance
}

func newService(transactions, provisionals *mongo.Collection, notifier contracts.OfflineTransactionNotifier, metrics contracts.GatewayMetrics, logger *zap.Logger) *Service {
	return &Service{
		Transactions: transactions,
		Provisionals: provisionals,
		Notifier:     notifier,
		Metrics:      metrics,
		Log:          logger,
		now:          time.Now,
	}
}

// EnsureIndexes backs the drain's read order and uuid idempotency.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(constvars.MongoCollectionOfflineTransactions).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uuid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isUpdated", Value: 1}, {Key: "timestamp", Value: 1}}},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err, constvars.MongoCollectionOfflineTransactions)
	}

	_, err = db.Collection(constvars.MongoCollectionProvisionalUpids).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "upi", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err, constvars.MongoCollectionProvisionalUpids)
	}
	return nil
}

// Enqueue appends one transaction with a fresh uuid. Each call is a single
// insert so concurrent writers never touch each other's entries.
func (s *Service) Enqueue(ctx context.Context, input *contracts.EnqueueOfflineTransactionInput) (*contracts.EnqueueOfflineTransactionOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("offlineQueue.Enqueue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionType, input.Type),
	)

	transaction := models.OfflineTransaction{
		UUID:           uuid.NewString(),
		Payload:        input.Payload,
		NationalIDType: input.NationalIDType,
		NationalID:     input.NationalID,
		Type:           input.Type,
		Timestamp:      s.now().UTC(),
		RetryCount:     0,
		IsUpdated:      0,
	}

	_, err := s.Transactions.InsertOne(ctx, transaction)
	if err != nil {
		s.Log.Error("offlineQueue.Enqueue error inserting transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBInsertDocument(err)
	}

	s.Metrics.IncOfflineTransaction(input.Type)
	utils.LogBusinessEvent(s.Log, utils.BusinessEventWriteDeferred, requestID,
		zap.String(constvars.LoggingTransactionIDKey, transaction.UUID),
		zap.String(constvars.LoggingTransactionType, transaction.Type),
		zap.String(constvars.LoggingLocalIDKey, input.Payload.LocalID),
	)

	if s.Notifier != nil {
		err = s.Notifier.Notify(ctx, &models.OfflineTransactionEvent{UUID: transaction.UUID, Type: transaction.Type})
		if err != nil {
			s.Log.Warn("offlineQueue.Enqueue notification not delivered",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingTransactionIDKey, transaction.UUID),
				zap.Error(err),
			)
		}
	}

	s.Log.Info("offlineQueue.Enqueue succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionIDKey, transaction.UUID),
	)
	return &contracts.EnqueueOfflineTransactionOutput{UUID: transaction.UUID}, nil
}

// FetchPending returns entries not yet applied, oldest first.
func (s *Service) FetchPending(ctx context.Context, input *contracts.FetchPendingInput) (*contracts.FetchPendingOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("offlineQueue.FetchPending called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if input != nil && input.Limit > 0 {
		findOptions.SetLimit(input.Limit)
	}

	cursor, err := s.Transactions.Find(ctx, bson.M{"isUpdated": 0}, findOptions)
	if err != nil {
		s.Log.Error("offlineQueue.FetchPending error finding transactions",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	transactions := make([]models.OfflineTransaction, 0)
	if err := cursor.All(ctx, &transactions); err != nil {
		s.Log.Error("offlineQueue.FetchPending error decoding transactions",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}

	s.Log.Info("offlineQueue.FetchPending succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseLengthKey, len(transactions)),
	)
	return &contracts.FetchPendingOutput{Transactions: transactions}, nil
}

// MarkUpdated is idempotent: replaying it for the same uuid changes nothing.
func (s *Service) MarkUpdated(ctx context.Context, transactionUUID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("offlineQueue.MarkUpdated called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionIDKey, transactionUUID),
	)

	_, err := s.Transactions.UpdateOne(ctx,
		bson.M{"uuid": transactionUUID},
		bson.M{"$set": bson.M{"isUpdated": 1}},
	)
	if err != nil {
		s.Log.Error("offlineQueue.MarkUpdated error updating transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (s *Service) IncrementRetry(ctx context.Context, transactionUUID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("offlineQueue.IncrementRetry called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTransactionIDKey, transactionUUID),
	)

	_, err := s.Transactions.UpdateOne(ctx,
		bson.M{"uuid": transactionUUID, "isUpdated": 0},
		bson.M{"$inc": bson.M{"retryCount": 1}},
	)
	if err != nil {
		s.Log.Error("offlineQueue.IncrementRetry error updating transaction",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

// RecordProvisional keeps an offline UPI for later exchange against the population registry.
func (s *Service) RecordProvisional(ctx context.Context, provisional *models.ProvisionalUpid) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("offlineQueue.RecordProvisional called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUPIKey, provisional.Upi),
	)

	if provisional.CreatedAt.IsZero() {
		provisional.CreatedAt = s.now().UTC()
	}

	_, err := s.Provisionals.UpdateOne(ctx,
		bson.M{"upi": provisional.Upi},
		bson.M{"$setOnInsert": provisional},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		s.Log.Error("offlineQueue.RecordProvisional error storing provisional upi",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}
