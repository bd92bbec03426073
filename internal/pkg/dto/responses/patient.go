package responses

type PatientCreated struct {
	LocalID   string `json:"localId"`
	Upi       string `json:"upi,omitempty"`
	IsOffline bool   `json:"isOffline"`
}

type PatientUpdated struct {
	Status string `json:"status"`
}

type UpiCorrected struct {
	Status        string `json:"status"`
	PreviousUpi   string `json:"previousUpi,omitempty"`
	Upi           string `json:"upi"`
	TransactionID string `json:"transactionId,omitempty"`
}
