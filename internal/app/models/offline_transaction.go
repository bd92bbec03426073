package models

import "time"

type OfflinePayload struct {
	URL     string `json:"url" bson:"url"`
	Method  string `json:"method" bson:"method"`
	Body    string `json:"body" bson:"body"`
	Kind    string `json:"type" bson:"type"`
	LocalID string `json:"patientId" bson:"patientId"`
}

// OfflineTransaction is a deferred remote write. UUID is the replay idempotency key.
type OfflineTransaction struct {
	UUID           string         `json:"uuid" bson:"uuid"`
	Payload        OfflinePayload `json:"payload" bson:"payload"`
	NationalIDType string         `json:"nationalIdType" bson:"nationalIdType"`
	NationalID     string         `json:"nationalId" bson:"nationalId"`
	Type           string         `json:"type" bson:"type"`
	Timestamp      time.Time      `json:"timestamp" bson:"timestamp"`
	RetryCount     int            `json:"retryCount" bson:"retryCount"`
	IsUpdated      int            `json:"isUpdated" bson:"isUpdated"`
}

type OfflineTransactionEvent struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
}

// ProvisionalUpid records an offline UPI so it can later be exchanged for a real one.
type ProvisionalUpid struct {
	Upi            string    `json:"upi" bson:"upi"`
	DocumentType   string    `json:"documentType" bson:"documentType"`
	DocumentNumber string    `json:"documentNumber" bson:"documentNumber"`
	LocalID        string    `json:"localId" bson:"localId"`
	SurName        string    `json:"surName" bson:"surName"`
	PostNames      string    `json:"postNames" bson:"postNames"`
	DateOfBirth    string    `json:"dateOfBirth" bson:"dateOfBirth"`
	Gender         string    `json:"gender" bson:"gender"`
	FacilityID     string    `json:"facilityId" bson:"facilityId"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	Reconciled     bool      `json:"reconciled" bson:"reconciled"`
}
