package patients

import (
	"context"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/exceptions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func storedPatient(id primitive.ObjectID, surName string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "surName", Value: surName},
		{Key: "postNames", Value: "Aline"},
		{Key: "gender", Value: "FEMALE"},
		{Key: "dateOfBirth", Value: "1990-04-12"},
		{Key: "birthYear", Value: 1990},
		{Key: "origin", Value: constvars.OriginLocal},
		{Key: "identifiers", Value: bson.A{
			bson.D{{Key: "system", Value: constvars.IdentifierSystemNID}, {Key: "value", Value: "1199080012345678"}},
			bson.D{{Key: "system", Value: constvars.IdentifierSystemInsurancePolicyNumber}, {Key: "value", Value: "RSSB-77"}},
		}},
		{Key: "addresses", Value: bson.A{
			bson.D{{Key: "addressId", Value: "addr-1"}, {Key: "type", Value: constvars.AddressTypeResidential}, {Key: "sector", Value: "Remera"}},
		}},
	}
}

func TestFindByIdentifier(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes local records", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		namespace := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch, storedPatient(id, "Uwase")))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patients, err := repository.FindByIdentifier(context.Background(), "1199080012345678")

		require.NoError(t, err)
		require.Len(t, patients, 1)
		assert.Equal(t, id.Hex(), patients[0].LocalID)
		assert.Equal(t, constvars.RankLocalOnly, patients[0].OriginRank)
		assert.Equal(t, "1199080012345678", patients[0].IdentifierValue(constvars.IdentifierSystemNID))
		require.Len(t, patients[0].Addresses, 1)
		assert.Equal(t, "addr-1", patients[0].Addresses[0].AddressID)
	})

	mt.Run("no match", func(mt *mtest.T) {
		namespace := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patients, err := repository.FindByIdentifier(context.Background(), "nobody")

		require.NoError(t, err)
		assert.Empty(t, patients)
	})
}

func TestFindByInsurance(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		namespace := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch, storedPatient(id, "Uwase")))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patient, err := repository.FindByInsurance(context.Background(), "RSSB-77")

		require.NoError(t, err)
		require.NotNil(t, patient)
		assert.Equal(t, id.Hex(), patient.LocalID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		namespace := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patient, err := repository.FindByInsurance(context.Background(), "RSSB-00")

		require.NoError(t, err)
		assert.Nil(t, patient)
	})
}

func TestSave(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert assigns local and address ids", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patient := &models.PatientIdentity{
			SurName:   "Uwase",
			Addresses: []models.Address{{Type: constvars.AddressTypeResidential}},
		}

		localID, err := repository.Save(context.Background(), patient)

		require.NoError(t, err)
		assert.NotEmpty(t, localID)
		assert.Equal(t, localID, patient.LocalID)
		assert.NotEmpty(t, patient.Addresses[0].AddressID)
	})

	mt.Run("same value under different systems gets distinct keys", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patient := &models.PatientIdentity{
			SurName: "Uwase",
			Identifiers: []models.Identifier{
				{System: constvars.IdentifierSystemUPI, Value: "1199080012345678"},
				{System: constvars.IdentifierSystemNID, Value: "1199080012345678"},
			},
		}

		_, err := repository.Save(context.Background(), patient)
		require.NoError(t, err)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		require.Equal(t, "insert", started.CommandName)
		documents, err := started.Command.LookupErr("documents")
		require.NoError(t, err)
		inserted := documents.Array().Index(0).Value().Document()
		keys, err := inserted.LookupErr("identifierKeys")
		require.NoError(t, err)
		values, err := keys.Array().Values()
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, constvars.IdentifierSystemUPI+"|1199080012345678", values[0].StringValue())
		assert.Equal(t, constvars.IdentifierSystemNID+"|1199080012345678", values[1].StringValue())
	})

	mt.Run("duplicate identifier is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		_, err := repository.Save(context.Background(), &models.PatientIdentity{SurName: "Uwase"})

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
	})

	mt.Run("replace existing record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		id := primitive.NewObjectID()
		localID, err := repository.Save(context.Background(), &models.PatientIdentity{LocalID: id.Hex(), SurName: "Uwase"})

		require.NoError(t, err)
		assert.Equal(t, id.Hex(), localID)
	})

	mt.Run("replace unknown record", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		_, err := repository.Save(context.Background(), &models.PatientIdentity{LocalID: primitive.NewObjectID().Hex()})

		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
	})

	mt.Run("malformed local id", func(mt *mtest.T) {
		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		_, err := repository.Save(context.Background(), &models.PatientIdentity{LocalID: "not-an-object-id"})

		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns matches", func(mt *mtest.T) {
		namespace := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch,
			storedPatient(primitive.NewObjectID(), "Uwase"),
			storedPatient(primitive.NewObjectID(), "Uwamahoro"),
		))

		repository := newPatientMongoRepository(mt.Coll, zap.NewNop())
		patients, err := repository.Search(context.Background(), &models.LocalSearchCriteria{
			SurName:       "uwa",
			BirthYearFrom: 1988,
			BirthYearTo:   1992,
		})

		require.NoError(t, err)
		assert.Len(t, patients, 2)
	})
}

func TestIdentifierKeys(t *testing.T) {
	keys := identifierKeys([]models.Identifier{
		{System: constvars.IdentifierSystemUPI, Value: "42"},
		{System: constvars.IdentifierSystemNID, Value: "42"},
		{System: constvars.IdentifierSystemNID, Value: " 42 "},
		{System: constvars.IdentifierSystemNIN, Value: ""},
	})

	assert.Equal(t, []string{
		constvars.IdentifierSystemUPI + "|42",
		constvars.IdentifierSystemNID + "|42",
	}, keys)
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("replaces the pair index with a unique identifier key index", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 27, Name: "IndexNotFound", Message: "index not found"}),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(t, EnsureIndexes(context.Background(), mt.DB))

		dropped := mt.GetStartedEvent()
		require.NotNil(t, dropped)
		assert.Equal(t, "dropIndexes", dropped.CommandName)

		created := mt.GetStartedEvent()
		require.NotNil(t, created)
		require.Equal(t, "createIndexes", created.CommandName)
		first := created.Command.Lookup("indexes").Array().Index(0).Value().Document()
		assert.Equal(t, "identifierKeys_1", first.Lookup("name").StringValue())
		assert.True(t, first.Lookup("unique").Boolean())
		_, err := first.Lookup("key").Document().LookupErr("identifierKeys")
		assert.NoError(t, err)
	})

	mt.Run("other drop failures are reported", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		assert.Error(t, EnsureIndexes(context.Background(), mt.DB))
	})
}
