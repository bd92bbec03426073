package patients

import (
	"context"
	"errors"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/utils"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 50

	// identifierKeysIndex replaces the compound multikey index on
	// identifiers.system/identifiers.value, which paired every system with
	// every value of the same array.
	identifierKeysIndex       = "identifierKeys_1"
	legacyIdentifierPairIndex = "identifiers.system_1_identifiers.value_1"

	mongoCodeNamespaceNotFound = 26
	mongoCodeIndexNotFound     = 27
)

var (
	patientMongoRepositoryInstance contracts.LocalStore
	oncePatientMongoRepository     sync.Once
)

// patientDocument is the stored shape of a local record. BirthYear is
// denormalized to serve the age-window search and IdentifierKeys holds one
// "system|value" entry per identifier for the uniqueness index.
type patientDocument struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	models.PatientIdentity `bson:",inline"`
	IdentifierKeys         []string  `bson:"identifierKeys"`
	BirthYear              int       `bson:"birthYear,omitempty"`
	UpdatedAt              time.Time `bson:"updatedAt"`
}

type PatientMongoRepository struct {
	Collection *mongo.Collection
	Log        *zap.Logger
	now        func() time.Time
}

func NewPatientMongoRepository(db *mongo.Database, logger *zap.Logger) contracts.LocalStore {
	oncePatientMongoRepository.Do(func() {
		patientMongoRepositoryInstance = newPatientMongoRepository(db.Collection(constvars.MongoCollectionPatients), logger)
	})
	return patientMongoRepositoryInstance
}

func newPatientMongoRepository(collection *mongo.Collection, logger *zap.Logger) *PatientMongoRepository {
	return &PatientMongoRepository{
		Collection: collection,
		Log:        logger,
		now:        time.Now,
	}
}

// EnsureIndexes makes each (system, value) pair unique across all local records.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := db.Collection(constvars.MongoCollectionPatients).Indexes()

	if _, err := indexes.DropOne(ctx, legacyIdentifierPairIndex); err != nil && !isMissingIndex(err) {
		return exceptions.ErrMongoDBCreateIndex(err, constvars.MongoCollectionPatients)
	}

	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "identifierKeys", Value: 1}},
			Options: options.Index().
				SetName(identifierKeysIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"identifierKeys": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "surName", Value: 1}, {Key: "birthYear", Value: 1}}},
	})
	if err != nil {
		return exceptions.ErrMongoDBCreateIndex(err, constvars.MongoCollectionPatients)
	}
	return nil
}

func (r *PatientMongoRepository) FindByIdentifier(ctx context.Context, value string) ([]models.PatientIdentity, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	r.Log.Info("PatientMongoRepository.FindByIdentifier called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	filter := bson.M{"identifiers.value": strings.TrimSpace(value)}
	return r.find(ctx, filter, options.Find(), "PatientMongoRepository.FindByIdentifier")
}

func (r *PatientMongoRepository) FindByInsurance(ctx context.Context, cardNumber string) (*models.PatientIdentity, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	r.Log.Info("PatientMongoRepository.FindByInsurance called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	filter := bson.M{"identifiers": bson.M{"$elemMatch": bson.M{
		"system": constvars.IdentifierSystemInsurancePolicyNumber,
		"value":  strings.TrimSpace(cardNumber),
	}}}

	var document patientDocument
	err := r.Collection.FindOne(ctx, filter).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.Log.Info("PatientMongoRepository.FindByInsurance no record found",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, nil
	}
	if err != nil {
		r.Log.Error("PatientMongoRepository.FindByInsurance error finding document",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}

	patient := document.toIdentity()
	r.Log.Info("PatientMongoRepository.FindByInsurance succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, patient.LocalID),
	)
	return patient, nil
}

// Save inserts a new record or replaces the one named by LocalID. Addresses
// without an addressId get one.
func (r *PatientMongoRepository) Save(ctx context.Context, patient *models.PatientIdentity) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	r.Log.Info("PatientMongoRepository.Save called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, patient.LocalID),
	)

	for i := range patient.Addresses {
		if patient.Addresses[i].AddressID == "" {
			patient.Addresses[i].AddressID = uuid.NewString()
		}
	}

	document := patientDocument{
		PatientIdentity: *patient,
		IdentifierKeys:  identifierKeys(patient.Identifiers),
		BirthYear:       utils.BirthYear(patient.DateOfBirth),
		UpdatedAt:       r.now().UTC(),
	}

	if patient.LocalID == "" {
		result, err := r.Collection.InsertOne(ctx, document)
		if err != nil {
			return "", r.writeError(requestID, err, exceptions.ErrMongoDBInsertDocument)
		}
		objectID, _ := result.InsertedID.(primitive.ObjectID)
		patient.LocalID = objectID.Hex()

		r.Log.Info("PatientMongoRepository.Save inserted",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingLocalIDKey, patient.LocalID),
		)
		return patient.LocalID, nil
	}

	objectID, err := primitive.ObjectIDFromHex(patient.LocalID)
	if err != nil {
		r.Log.Error("PatientMongoRepository.Save invalid local id",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return "", exceptions.ErrMongoDBNotObjectID(err)
	}

	result, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": objectID}, document)
	if err != nil {
		return "", r.writeError(requestID, err, exceptions.ErrMongoDBUpdateDocument)
	}
	if result.MatchedCount == 0 {
		return "", exceptions.ErrPatientNotFound(nil, patient.LocalID)
	}

	r.Log.Info("PatientMongoRepository.Save replaced",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingLocalIDKey, patient.LocalID),
	)
	return patient.LocalID, nil
}

// Search matches the surname as a case-insensitive prefix and post names as
// a case-insensitive substring, inside the optional birth-year window.
func (r *PatientMongoRepository) Search(ctx context.Context, criteria *models.LocalSearchCriteria) ([]models.PatientIdentity, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	r.Log.Info("PatientMongoRepository.Search called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("birth_year_from", criteria.BirthYearFrom),
		zap.Int("birth_year_to", criteria.BirthYearTo),
	)

	filter := bson.M{}
	if surName := strings.TrimSpace(criteria.SurName); surName != "" {
		filter["surName"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(surName), Options: "i"}
	}
	if postNames := strings.TrimSpace(criteria.PostNames); postNames != "" {
		filter["postNames"] = primitive.Regex{Pattern: regexp.QuoteMeta(postNames), Options: "i"}
	}

	birthYear := bson.M{}
	if criteria.BirthYearFrom > 0 {
		birthYear["$gte"] = criteria.BirthYearFrom
	}
	if criteria.BirthYearTo > 0 {
		birthYear["$lte"] = criteria.BirthYearTo
	}
	if len(birthYear) > 0 {
		filter["birthYear"] = birthYear
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "surName", Value: 1}, {Key: "postNames", Value: 1}})

	return r.find(ctx, filter, findOptions, "PatientMongoRepository.Search")
}

func (r *PatientMongoRepository) find(ctx context.Context, filter bson.M, findOptions *options.FindOptions, caller string) ([]models.PatientIdentity, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.Log.Error(caller+" error finding documents",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var documents []patientDocument
	if err := cursor.All(ctx, &documents); err != nil {
		r.Log.Error(caller+" error iterating documents",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}

	patients := make([]models.PatientIdentity, 0, len(documents))
	for i := range documents {
		patients = append(patients, *documents[i].toIdentity())
	}

	r.Log.Info(caller+" succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingResponseLengthKey, len(patients)),
	)
	return patients, nil
}

func (r *PatientMongoRepository) writeError(requestID string, err error, fallback func(error) *exceptions.CustomError) error {
	if mongo.IsDuplicateKeyError(err) {
		r.Log.Warn("PatientMongoRepository.Save identifier already used by another record",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrIdentifierConflict(err)
	}
	r.Log.Error("PatientMongoRepository.Save error writing document",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	return fallback(err)
}

func (d *patientDocument) toIdentity() *models.PatientIdentity {
	patient := d.PatientIdentity
	patient.LocalID = d.ID.Hex()
	patient.OriginRank = constvars.RankLocalOnly
	return &patient
}

func identifierKeys(identifiers []models.Identifier) []string {
	keys := make([]string, 0, len(identifiers))
	seen := make(map[string]bool, len(identifiers))
	for _, identifier := range identifiers {
		value := strings.TrimSpace(identifier.Value)
		if value == "" {
			continue
		}
		key := identifier.System + "|" + value
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func isMissingIndex(err error) bool {
	var commandErr mongo.CommandError
	if !errors.As(err, &commandErr) {
		return false
	}
	return commandErr.Code == mongoCodeIndexNotFound || commandErr.Code == mongoCodeNamespaceNotFound
}
