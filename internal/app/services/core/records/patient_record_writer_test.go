package records

import (
	"context"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"primarycare-identity-service/internal/pkg/dto/requests"
	"primarycare-identity-service/internal/pkg/dto/responses"
	"primarycare-identity-service/internal/pkg/exceptions"
	"primarycare-identity-service/internal/pkg/fhir_dto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLocalStore struct {
	mock.Mock
}

func (m *mockLocalStore) FindByIdentifier(ctx context.Context, value string) ([]models.PatientIdentity, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PatientIdentity), args.Error(1)
}

func (m *mockLocalStore) FindByInsurance(ctx context.Context, cardNumber string) (*models.PatientIdentity, error) {
	args := m.Called(ctx, cardNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PatientIdentity), args.Error(1)
}

func (m *mockLocalStore) Save(ctx context.Context, patient *models.PatientIdentity) (string, error) {
	args := m.Called(ctx, patient)
	return args.String(0), args.Error(1)
}

func (m *mockLocalStore) Search(ctx context.Context, criteria *models.LocalSearchCriteria) ([]models.PatientIdentity, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PatientIdentity), args.Error(1)
}

type mockUpidIssuer struct {
	mock.Mock
}

func (m *mockUpidIssuer) Ensure(ctx context.Context, input *contracts.EnsureUpiInput) (*contracts.EnsureUpiOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.EnsureUpiOutput), args.Error(1)
}

func (m *mockUpidIssuer) LookupByDocument(ctx context.Context, input *contracts.LookupByDocumentInput) (*models.Citizen, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Citizen), args.Error(1)
}

func (m *mockUpidIssuer) RecordProvisional(ctx context.Context, output *contracts.EnsureUpiOutput, patient *models.PatientIdentity, localID string) error {
	return m.Called(ctx, output, patient, localID).Error(0)
}

type mockClientRegistry struct {
	mock.Mock
}

func (m *mockClientRegistry) FindByIdentifier(ctx context.Context, gateway models.RemoteGatewayConfig, value string) ([]fhir_dto.Patient, error) {
	args := m.Called(ctx, gateway, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fhir_dto.Patient), args.Error(1)
}

func (m *mockClientRegistry) SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, family, given, birthDate string) ([]fhir_dto.Patient, error) {
	args := m.Called(ctx, gateway, family, given, birthDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fhir_dto.Patient), args.Error(1)
}

func (m *mockClientRegistry) SavePatient(ctx context.Context, gateway models.RemoteGatewayConfig, patient *fhir_dto.Patient) (*models.GatewayCallOutcome, error) {
	args := m.Called(ctx, gateway, patient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GatewayCallOutcome), args.Error(1)
}

func (m *mockClientRegistry) PatientURL(gateway models.RemoteGatewayConfig) string {
	return gateway.BaseURL + constvars.ClientRegistryPatientPath
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Enqueue(ctx context.Context, input *contracts.EnqueueOfflineTransactionInput) (*contracts.EnqueueOfflineTransactionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.EnqueueOfflineTransactionOutput), args.Error(1)
}

func (m *mockQueue) FetchPending(ctx context.Context, input *contracts.FetchPendingInput) (*contracts.FetchPendingOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.FetchPendingOutput), args.Error(1)
}

func (m *mockQueue) MarkUpdated(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func (m *mockQueue) IncrementRetry(ctx context.Context, uuid string) error {
	return m.Called(ctx, uuid).Error(0)
}

func (m *mockQueue) RecordProvisional(ctx context.Context, provisional *models.ProvisionalUpid) error {
	return m.Called(ctx, provisional).Error(0)
}

type staticSettings struct {
	config models.RemoteGatewayConfig
}

func (s staticSettings) Resolve(context.Context) models.RemoteGatewayConfig {
	return s.config
}

func (s staticSettings) GetSettings(context.Context) (*responses.GatewaySettings, error) {
	return nil, nil
}

func (s staticSettings) SaveSettings(context.Context, *requests.GatewaySettings) (*responses.GatewaySettings, error) {
	return nil, nil
}

type staticProbe bool

func (p staticProbe) Check(context.Context) bool {
	return bool(p)
}

type fixture struct {
	local    *mockLocalStore
	issuer   *mockUpidIssuer
	registry *mockClientRegistry
	queue    *mockQueue
	service  *writer
}

func newFixture(online bool) *fixture {
	f := &fixture{
		local:    new(mockLocalStore),
		issuer:   new(mockUpidIssuer),
		registry: new(mockClientRegistry),
		queue:    new(mockQueue),
	}
	settings := staticSettings{config: models.RemoteGatewayConfig{
		BaseURL:  "http://openhim.local",
		Username: "emr",
		Password: "secret",
		Status:   constvars.GatewayStatusDefined,
	}}
	f.service = newWriter(f.local, f.issuer, f.registry, f.queue, settings, staticProbe(online), zap.NewNop())
	f.issuer.On("RecordProvisional", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return f
}

func newRecord(origin string) *models.PatientIdentity {
	return &models.PatientIdentity{
		SurName:     "Uwase",
		PostNames:   "aline marie",
		Gender:      "FEMALE",
		DateOfBirth: "1990-04-12",
		Origin:      origin,
		Identifiers: []models.Identifier{
			{System: constvars.IdentifierSystemNID, Value: "1199080012345678"},
			{System: constvars.IdentifierSystemPrimaryCareID, Value: "PC-1"},
		},
	}
}

func offlineUpi() *contracts.EnsureUpiOutput {
	return &contracts.EnsureUpiOutput{Upi: "OFFLINE-ABCDEF123456", IsOffline: true, Issued: true}
}

func TestCreate_LocalOriginStaysLocal(t *testing.T) {
	f := newFixture(false)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(offlineUpi(), nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)

	output, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginLocal)})

	require.NoError(t, err)
	assert.Equal(t, "6650a1", output.LocalID)
	assert.True(t, output.IsOffline)
	assert.Empty(t, output.TransactionID)
	f.registry.AssertNotCalled(t, "SavePatient", mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	f.issuer.AssertCalled(t, "RecordProvisional", mock.Anything, mock.Anything, mock.Anything, "6650a1")
}

func TestCreate_CapitalizesGivenName(t *testing.T) {
	f := newFixture(false)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(offlineUpi(), nil)
	f.local.On("Save", mock.Anything, mock.MatchedBy(func(patient *models.PatientIdentity) bool {
		return patient.PostNames == "Aline Marie"
	})).Return("6650a1", nil)

	_, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginLocal)})

	require.NoError(t, err)
	f.local.AssertExpectations(t)
}

func TestCreate_NPROriginOfflineIsDeferred(t *testing.T) {
	f := newFixture(false)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(offlineUpi(), nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)
	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(input *contracts.EnqueueOfflineTransactionInput) bool {
		return input.Type == constvars.OfflineTransactionTypeSyncIn &&
			input.NationalIDType == constvars.IdentifierSystemNID &&
			input.NationalID == "1199080012345678" &&
			input.Payload.URL == "http://openhim.local/clientregistry/Patient" &&
			input.Payload.Method == constvars.MethodPost &&
			input.Payload.Kind == constvars.OfflinePayloadKindPatientSync &&
			input.Payload.LocalID == "6650a1" &&
			strings.Contains(input.Payload.Body, `"id":"OFFLINE-ABCDEF123456"`) &&
			!strings.Contains(input.Payload.Body, constvars.IdentifierSystemPrimaryCareID)
	})).Return(&contracts.EnqueueOfflineTransactionOutput{UUID: "uuid-1"}, nil).Once()
	f.queue.On("Enqueue", mock.Anything, mock.Anything).Return(&contracts.EnqueueOfflineTransactionOutput{UUID: "uuid-2"}, nil).Once()

	first, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginNPR)})
	require.NoError(t, err)
	second, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginNPR)})
	require.NoError(t, err)

	assert.Equal(t, "uuid-1", first.TransactionID)
	assert.Equal(t, "uuid-2", second.TransactionID)
	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	f.registry.AssertNotCalled(t, "SavePatient", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_NPROriginPushed(t *testing.T) {
	f := newFixture(true)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(&contracts.EnsureUpiOutput{Upi: "119900000009", Issued: true}, nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)
	f.registry.On("SavePatient", mock.Anything, mock.Anything, mock.MatchedBy(func(resource *fhir_dto.Patient) bool {
		return resource.ID == "119900000009"
	})).Return(&models.GatewayCallOutcome{Kind: models.OutcomeSuccess, StatusCode: 201}, nil)

	output, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginNPR)})

	require.NoError(t, err)
	assert.Empty(t, output.TransactionID)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestCreate_RegistryRejectionIsDeferred(t *testing.T) {
	f := newFixture(true)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(&contracts.EnsureUpiOutput{Upi: "119900000009", Issued: true}, nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)
	f.registry.On("SavePatient", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.GatewayCallOutcome{Kind: models.OutcomeServerError, StatusCode: 500}, nil)
	f.queue.On("Enqueue", mock.Anything, mock.Anything).Return(&contracts.EnqueueOfflineTransactionOutput{UUID: "uuid-3"}, nil)

	output, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginNPR)})

	require.NoError(t, err)
	assert.Equal(t, "uuid-3", output.TransactionID)
}

func TestCreate_IdentifierConflict(t *testing.T) {
	f := newFixture(false)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(offlineUpi(), nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("", exceptions.ErrIdentifierConflict(nil))

	output, err := f.service.Create(context.Background(), &contracts.CreatePatientInput{Patient: newRecord(constvars.OriginNPR)})

	require.Error(t, err)
	assert.Nil(t, output)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	f.issuer.AssertNotCalled(t, "RecordProvisional", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func storedRecord() models.PatientIdentity {
	return models.PatientIdentity{
		LocalID: "6650a1",
		Identifiers: []models.Identifier{
			{System: constvars.IdentifierSystemUPI, Value: "119900000001"},
			{System: constvars.IdentifierSystemNID, Value: "1199080012345678"},
			{System: constvars.IdentifierSystemTracnetNumber, Value: "TR-55"},
		},
		Addresses: []models.Address{{AddressID: "addr-res", Type: constvars.AddressTypeResidential}},
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(false)
	f.local.On("FindByIdentifier", mock.Anything, "PC-404").Return([]models.PatientIdentity{}, nil)

	output, err := f.service.Update(context.Background(), &contracts.UpdatePatientInput{
		Patient:         newRecord(constvars.OriginLocal),
		MatchIdentifier: "PC-404",
	})

	require.Error(t, err)
	assert.Nil(t, output)
	customErr, ok := err.(*exceptions.CustomError)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
}

func TestUpdate_PushFlagOfflineIsDeferred(t *testing.T) {
	f := newFixture(false)
	f.local.On("FindByIdentifier", mock.Anything, "PC-1").Return([]models.PatientIdentity{storedRecord()}, nil)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(&contracts.EnsureUpiOutput{Upi: "119900000001"}, nil)
	f.local.On("Save", mock.Anything, mock.MatchedBy(func(patient *models.PatientIdentity) bool {
		return patient.LocalID == "6650a1" &&
			patient.UPI() == "119900000001" &&
			patient.IdentifierValue(constvars.IdentifierSystemTracnetNumber) == "TR-55"
	})).Return("6650a1", nil)
	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(input *contracts.EnqueueOfflineTransactionInput) bool {
		return input.Type == constvars.OfflineTransactionTypeSyncUp &&
			input.NationalIDType == constvars.IdentifierSystemNID &&
			input.NationalID == "1199080012345678" &&
			strings.Contains(input.Payload.Body, "TR-55")
	})).Return(&contracts.EnqueueOfflineTransactionOutput{UUID: "uuid-4"}, nil)

	record := newRecord(constvars.OriginLocal)
	record.Addresses = []models.Address{{Type: constvars.AddressTypeResidential, Sector: "Remera"}}

	output, err := f.service.Update(context.Background(), &contracts.UpdatePatientInput{
		Patient:              record,
		MatchIdentifier:      "PC-1",
		PushToClientRegistry: true,
	})

	require.NoError(t, err)
	assert.Equal(t, constvars.StatusCompleted, output.Status)
	assert.Equal(t, "uuid-4", output.TransactionID)
	assert.Equal(t, "addr-res", record.Addresses[0].AddressID)
	f.local.AssertExpectations(t)
}

func TestUpdate_StoredUPIIsNotReplaced(t *testing.T) {
	f := newFixture(false)
	f.local.On("FindByIdentifier", mock.Anything, "PC-1").Return([]models.PatientIdentity{storedRecord()}, nil)
	f.issuer.On("Ensure", mock.Anything, mock.Anything).Return(&contracts.EnsureUpiOutput{Upi: "119900000001"}, nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)

	record := newRecord(constvars.OriginLocal)
	record.SetIdentifier(constvars.IdentifierSystemUPI, "119900000777", "")

	_, err := f.service.Update(context.Background(), &contracts.UpdatePatientInput{Patient: record, MatchIdentifier: "PC-1"})

	require.NoError(t, err)
	assert.Equal(t, "119900000001", record.UPI())
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestCorrectUpi_PushedToRegistry(t *testing.T) {
	f := newFixture(true)
	f.local.On("FindByIdentifier", mock.Anything, "1199080012345678").Return([]models.PatientIdentity{storedRecord()}, nil)
	f.local.On("Save", mock.Anything, mock.MatchedBy(func(patient *models.PatientIdentity) bool {
		return patient.LocalID == "6650a1" && patient.UPI() == "119900000777"
	})).Return("6650a1", nil)
	f.registry.On("SavePatient", mock.Anything, mock.Anything, mock.MatchedBy(func(resource *fhir_dto.Patient) bool {
		return resource.ID == "119900000777"
	})).Return(&models.GatewayCallOutcome{Kind: models.OutcomeSuccess, StatusCode: 200}, nil)

	output, err := f.service.CorrectUpi(context.Background(), &contracts.CorrectUpiInput{
		MatchIdentifier: "1199080012345678",
		Upi:             "119900000777",
	})

	require.NoError(t, err)
	assert.Equal(t, constvars.StatusCompleted, output.Status)
	assert.Equal(t, "119900000001", output.PreviousUpi)
	assert.Equal(t, "119900000777", output.Upi)
	assert.Empty(t, output.TransactionID)
	f.local.AssertExpectations(t)
	f.registry.AssertExpectations(t)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	f.issuer.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
}

func TestCorrectUpi_OfflineIsDeferredAsSyncUp(t *testing.T) {
	f := newFixture(false)
	f.local.On("FindByIdentifier", mock.Anything, "1199080012345678").Return([]models.PatientIdentity{storedRecord()}, nil)
	f.local.On("Save", mock.Anything, mock.Anything).Return("6650a1", nil)
	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(input *contracts.EnqueueOfflineTransactionInput) bool {
		return input.Type == constvars.OfflineTransactionTypeSyncUp &&
			input.NationalID == "1199080012345678" &&
			input.Payload.LocalID == "6650a1" &&
			strings.Contains(input.Payload.Body, `"id":"119900000777"`)
	})).Return(&contracts.EnqueueOfflineTransactionOutput{UUID: "uuid-9"}, nil)

	output, err := f.service.CorrectUpi(context.Background(), &contracts.CorrectUpiInput{
		MatchIdentifier: "1199080012345678",
		Upi:             "119900000777",
	})

	require.NoError(t, err)
	assert.Equal(t, "uuid-9", output.TransactionID)
	f.queue.AssertExpectations(t)
	f.registry.AssertNotCalled(t, "SavePatient", mock.Anything, mock.Anything, mock.Anything)
}

func TestCorrectUpi_Rejections(t *testing.T) {
	t.Run("Unknown record", func(t *testing.T) {
		f := newFixture(true)
		f.local.On("FindByIdentifier", mock.Anything, "PC-404").Return([]models.PatientIdentity{}, nil)

		output, err := f.service.CorrectUpi(context.Background(), &contracts.CorrectUpiInput{MatchIdentifier: "PC-404", Upi: "119900000777"})

		require.Error(t, err)
		assert.Nil(t, output)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, constvars.StatusNotFound, customErr.StatusCode)
	})

	t.Run("Provisional value is not a correction", func(t *testing.T) {
		f := newFixture(true)

		output, err := f.service.CorrectUpi(context.Background(), &contracts.CorrectUpiInput{MatchIdentifier: "PC-1", Upi: "OFFLINE-ABCDEF123456"})

		require.Error(t, err)
		assert.Nil(t, output)
		f.local.AssertNotCalled(t, "FindByIdentifier", mock.Anything, mock.Anything)
	})

	t.Run("Same UPI is a no-op", func(t *testing.T) {
		f := newFixture(true)
		f.local.On("FindByIdentifier", mock.Anything, "PC-1").Return([]models.PatientIdentity{storedRecord()}, nil)

		output, err := f.service.CorrectUpi(context.Background(), &contracts.CorrectUpiInput{MatchIdentifier: "PC-1", Upi: "119900000001"})

		require.NoError(t, err)
		assert.Equal(t, constvars.StatusCompleted, output.Status)
		f.local.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.registry.AssertNotCalled(t, "SavePatient", mock.Anything, mock.Anything, mock.Anything)
	})
}
