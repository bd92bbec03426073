package upid

import (
	"context"
	"errors"
	"primarycare-identity-service/internal/app/contracts"
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/app/services/shared/metrics"
	"primarycare-identity-service/internal/pkg/constvars"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockPopulationRegistry struct {
	mock.Mock
}

func (m *mockPopulationRegistry) GetCitizen(ctx context.Context, gateway models.RemoteGatewayConfig, request *models.CitizenRequest) (*models.CitizenResponse, error) {
	args := m.Called(ctx, gateway, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CitizenResponse), args.Error(1)
}

func (m *mockPopulationRegistry) SearchByName(ctx context.Context, gateway models.RemoteGatewayConfig, surName, postNames, yearOfBirth string) ([]models.Citizen, error) {
	args := m.Called(ctx, gateway, surName, postNames, yearOfBirth)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Citizen), args.Error(1)
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

func onlineGateway() models.GatewayContext {
	return models.GatewayContext{
		Online: true,
		Config: models.RemoteGatewayConfig{
			BaseURL:    "http://openhim.local",
			Username:   "emr",
			Password:   "secret",
			FacilityID: "0412",
			Status:     constvars.GatewayStatusDefined,
		},
	}
}

func newPatient() *models.PatientIdentity {
	return &models.PatientIdentity{
		SurName:     "Uwase",
		PostNames:   "Aline",
		Gender:      "FEMALE",
		DateOfBirth: "1990-04-12",
		Identifiers: []models.Identifier{{System: constvars.IdentifierSystemNID, Value: "1199080012345678"}},
	}
}

func TestEnsure(t *testing.T) {
	t.Run("Existing UPI Skips The Registry", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

		patient := newPatient()
		patient.SetIdentifier(constvars.IdentifierSystemUPI, "119900000001", "")

		first, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: patient, Gateway: onlineGateway()})
		require.NoError(t, err)
		second, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: patient, Gateway: onlineGateway()})
		require.NoError(t, err)

		assert.Equal(t, "119900000001", first.Upi)
		assert.Equal(t, first.Upi, second.Upi)
		assert.False(t, first.Issued)
		registry.AssertNotCalled(t, "GetCitizen", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Registry Issues UPI", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		registry.On("GetCitizen", mock.Anything, mock.Anything, mock.MatchedBy(func(request *models.CitizenRequest) bool {
			return request.DocumentType == constvars.IdentifierSystemNID &&
				request.Nid == "1199080012345678" &&
				request.FosaID == "0412"
		})).Return(&models.CitizenResponse{Status: "ok", Data: models.Citizen{Upi: "119900000009"}}, nil)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: newPatient(), Gateway: onlineGateway()})
		require.NoError(t, err)

		assert.Equal(t, "119900000009", output.Upi)
		assert.False(t, output.IsOffline)
		assert.True(t, output.Issued)
		registry.AssertExpectations(t)
	})

	t.Run("Offline Issues Provisional UPI Without Network", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())
		gateway := onlineGateway()
		gateway.Online = false

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: newPatient(), Gateway: gateway})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(output.Upi, constvars.OfflineUpidPrefix))
		assert.Len(t, output.Upi, len(constvars.OfflineUpidPrefix)+12)
		assert.Equal(t, strings.ToUpper(output.Upi), output.Upi)
		assert.True(t, output.IsOffline)
		registry.AssertNotCalled(t, "GetCitizen", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unconfigured Gateway Issues Provisional UPI", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())
		gateway := onlineGateway()
		gateway.Config.Status = constvars.GatewayStatusPasswordUndefined

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: newPatient(), Gateway: gateway})
		require.NoError(t, err)
		assert.True(t, output.IsOffline)
	})

	t.Run("Registry Failure Is Swallowed", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		registry.On("GetCitizen", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: newPatient(), Gateway: onlineGateway()})
		require.NoError(t, err)
		assert.True(t, output.IsOffline)
	})

	t.Run("Registry Non Ok Status", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		registry.On("GetCitizen", mock.Anything, mock.Anything, mock.Anything).Return(&models.CitizenResponse{Status: "error"}, nil)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: newPatient(), Gateway: onlineGateway()})
		require.NoError(t, err)
		assert.True(t, output.IsOffline)
	})

	t.Run("No National Document Uses Temporary Reference", func(t *testing.T) {
		registry := new(mockPopulationRegistry)
		registry.On("GetCitizen", mock.Anything, mock.Anything, mock.MatchedBy(func(request *models.CitizenRequest) bool {
			return request.DocumentType == constvars.SearchTypeTempID &&
				strings.HasPrefix(request.DocumentNumber, constvars.TemporaryIDPrefix)
		})).Return(&models.CitizenResponse{Status: "ok", Data: models.Citizen{Upi: "119900000010"}}, nil)
		service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

		patient := newPatient()
		patient.Identifiers = nil

		output, err := service.Ensure(context.Background(), &contracts.EnsureUpiInput{Patient: patient, Gateway: onlineGateway()})
		require.NoError(t, err)
		assert.Equal(t, "119900000010", output.Upi)
		registry.AssertExpectations(t)
	})
}

func TestRecordProvisional(t *testing.T) {
	t.Run("Provisional UPI Is Recorded", func(t *testing.T) {
		queue := new(mockQueue)
		queue.On("RecordProvisional", mock.Anything, mock.MatchedBy(func(provisional *models.ProvisionalUpid) bool {
			return provisional.Upi == "OFFLINE-ABCDEF123456" && provisional.LocalID == "6650a1"
		})).Return(nil)
		service := newIssuer(new(mockPopulationRegistry), queue, metrics.Nop{}, zap.NewNop())

		output := &contracts.EnsureUpiOutput{Upi: "OFFLINE-ABCDEF123456", IsOffline: true, Issued: true}
		err := service.RecordProvisional(context.Background(), output, newPatient(), "6650a1")

		require.NoError(t, err)
		queue.AssertExpectations(t)
	})

	t.Run("Registry UPI Is Not Recorded", func(t *testing.T) {
		queue := new(mockQueue)
		service := newIssuer(new(mockPopulationRegistry), queue, metrics.Nop{}, zap.NewNop())

		output := &contracts.EnsureUpiOutput{Upi: "119900000009", Issued: true}
		err := service.RecordProvisional(context.Background(), output, newPatient(), "6650a1")

		require.NoError(t, err)
		queue.AssertNotCalled(t, "RecordProvisional", mock.Anything, mock.Anything)
	})
}

func TestLookupByDocument(t *testing.T) {
	registry := new(mockPopulationRegistry)
	registry.On("GetCitizen", mock.Anything, mock.Anything, mock.MatchedBy(func(request *models.CitizenRequest) bool {
		return request.Nin == "NIN-1"
	})).Return(&models.CitizenResponse{Status: "ok", Data: models.Citizen{Upi: "119900000011", SurName: "Mugisha"}}, nil)
	service := newIssuer(registry, new(mockQueue), metrics.Nop{}, zap.NewNop())

	citizen, err := service.LookupByDocument(context.Background(), &contracts.LookupByDocumentInput{
		Gateway:      onlineGateway().Config,
		DocumentType: constvars.IdentifierSystemNIN,
		Value:        "NIN-1",
	})

	require.NoError(t, err)
	require.NotNil(t, citizen)
	assert.Equal(t, "Mugisha", citizen.SurName)
}
