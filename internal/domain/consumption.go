package domain

import "time"

// ConsumptionRecord marks a registration's token as used. Records are never deleted.
type ConsumptionRecord struct {
	RegistrationID string
	EventID        string
	UserID         string
	Station        string
	ConsumedAt     time.Time
}
