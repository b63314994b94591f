package domain

import (
	"fmt"
	"time"
)

// StatusCheck is an auxiliary client-reported liveness record.
type StatusCheck struct {
	ID         string
	ClientName string
	CreatedAt  time.Time
}

// ValidateStatusCheck validates a StatusCheck instance
func ValidateStatusCheck(s *StatusCheck) error {
	if s == nil {
		return fmt.Errorf("status check cannot be nil")
	}
	if s.ID == "" {
		return fmt.Errorf("status check ID is required")
	}
	if s.ClientName == "" {
		return fmt.Errorf("status check ClientName is required")
	}
	return nil
}
