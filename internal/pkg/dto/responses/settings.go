package responses

// GatewaySettings never carries the password, only whether one is set.
type GatewaySettings struct {
	BaseURL             string `json:"baseUrl"`
	ClientRegistryURL   string `json:"clientRegistryUrl"`
	Username            string `json:"username"`
	PasswordDefined     bool   `json:"passwordDefined"`
	FacilityID          string `json:"facilityId"`
	DefaultLocationCode string `json:"defaultLocationCode"`
	Status              string `json:"status"`
}
