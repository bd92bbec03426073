package requests

// Empty fields fall back to the environment defaults.
type GatewaySettings struct {
	BaseURL             string `json:"baseUrl" validate:"omitempty,url"`
	ClientRegistryURL   string `json:"clientRegistryUrl" validate:"omitempty,url"`
	Username            string `json:"username"`
	Password            string `json:"password"`
	FacilityID          string `json:"facilityId"`
	DefaultLocationCode string `json:"defaultLocationCode"`
}
