package model

import "time"

type School struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

type DeviceStatus string

const (
	StatusHealthy  DeviceStatus = "green"
	StatusWarning  DeviceStatus = "yellow"
	StatusCritical DeviceStatus = "red"
)

var DeviceStatuses = []DeviceStatus{StatusHealthy, StatusWarning, StatusCritical}

func (s DeviceStatus) Valid() bool {
	switch s {
	case StatusHealthy, StatusWarning, StatusCritical:
		return true
	}
	return false
}

type Device struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Status      DeviceStatus `json:"status"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

type Page[T any] struct {
	Data       []T  `json:"data"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ScanResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	DeviceID string `json:"deviceId,omitempty"`
}

// Err converts a rejected scan into a ScanRejected error. It returns nil for a
// successful scan.
func (r ScanResult) Err() error {
	if r.Success {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = MsgInvalidQRCode
	}
	return &Error{Kind: KindScanRejected, Message: msg}
}
