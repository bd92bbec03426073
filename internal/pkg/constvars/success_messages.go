package constvars

const (
	ResolvePatientSuccessMessage      = "patient resolution completed"
	SearchPatientSuccessMessage       = "patient search completed"
	CreatePatientSuccessMessage       = "patient created"
	UpdatePatientSuccessMessage       = "patient updated"
	CorrectUpiSuccessMessage          = "patient UPI corrected"
	GetGatewaySettingsSuccessMessage  = "gateway settings retrieved"
	SaveGatewaySettingsSuccessMessage = "gateway settings saved"
)

const (
	ResponseUnknown = "unknown"
)
