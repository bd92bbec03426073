package resolution

import (
	"primarycare-identity-service/internal/app/models"
	"primarycare-identity-service/internal/pkg/constvars"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMergeRegistryOntoLocal_UPI(t *testing.T) {
	registryWith := func(upi string) *models.PatientIdentity {
		return &models.PatientIdentity{Identifiers: []models.Identifier{{System: constvars.IdentifierSystemUPI, Value: upi}}}
	}
	localWith := func(upi string) *models.PatientIdentity {
		return &models.PatientIdentity{LocalID: "l-1", Identifiers: []models.Identifier{{System: constvars.IdentifierSystemUPI, Value: upi}}}
	}

	t.Run("Local UPI Kept When Registry Differs", func(t *testing.T) {
		merged := mergeRegistryOntoLocal(registryWith("119900000002"), localWith("119900000001"), zap.NewNop(), "")
		assert.Equal(t, "119900000001", merged.UPI())
	})

	t.Run("Provisional Local UPI Superseded", func(t *testing.T) {
		merged := mergeRegistryOntoLocal(registryWith("119900000002"), localWith("OFFLINE-ABCDEF123456"), zap.NewNop(), "")
		assert.Equal(t, "119900000002", merged.UPI())
	})

	t.Run("Registry Without UPI Takes Local", func(t *testing.T) {
		merged := mergeRegistryOntoLocal(&models.PatientIdentity{}, localWith("119900000001"), zap.NewNop(), "")
		assert.Equal(t, "119900000001", merged.UPI())
	})

	t.Run("Registry Slice Not Aliased", func(t *testing.T) {
		registry := registryWith("119900000002")
		local := localWith("119900000001")
		_ = mergeRegistryOntoLocal(registry, local, zap.NewNop(), "")
		assert.Equal(t, "119900000002", registry.UPI())
	})
}

func TestMergeAddresses(t *testing.T) {
	t.Run("Registry Type Replaces Local Type And Keeps Its Id", func(t *testing.T) {
		merged := mergeAddresses(
			[]models.Address{{Type: constvars.AddressTypeResidential, Sector: "Kimironko"}},
			[]models.Address{{AddressID: "addr-1", Type: "residential", Sector: "Remera"}},
		)

		assert.Equal(t, []models.Address{{AddressID: "addr-1", Type: constvars.AddressTypeResidential, Sector: "Kimironko"}}, merged)
	})

	t.Run("Local Types Missing From Registry Are Kept", func(t *testing.T) {
		merged := mergeAddresses(
			[]models.Address{{Type: constvars.AddressTypeResidential}},
			[]models.Address{{AddressID: "addr-2", Type: constvars.AddressTypePostal}},
		)

		assert.Len(t, merged, 2)
		assert.Equal(t, "addr-2", merged[1].AddressID)
	})

	t.Run("Untyped Registry Address Does Not Hide Untyped Local Addresses", func(t *testing.T) {
		merged := mergeAddresses(
			[]models.Address{{Sector: "Kimironko"}},
			[]models.Address{{AddressID: "addr-3", Sector: "Remera"}, {AddressID: "addr-4", Sector: "Gisozi"}},
		)

		assert.Equal(t, []models.Address{
			{Sector: "Kimironko"},
			{AddressID: "addr-3", Sector: "Remera"},
			{AddressID: "addr-4", Sector: "Gisozi"},
		}, merged)
	})
}
