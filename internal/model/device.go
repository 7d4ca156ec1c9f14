package model

import (
	"unicode/utf8"

	ptime "github.com/ferux/pushcenter/internal/time"
)

// Device is a registered relay endpoint.
type Device struct {
	ID         string      `json:"id"`
	DeviceCode string      `json:"deviceCode"`
	Name       string      `json:"name"`
	ExpireDate *ptime.Date `json:"expireDate"`
	IsExpired  bool        `json:"isExpired"`
}

// Refresh recomputes IsExpired against today and reports whether it changed.
func (d *Device) Refresh(today ptime.Date) (changed bool) {
	expired := d.ExpireDate != nil && d.ExpireDate.Before(today)
	changed = expired != d.IsExpired
	d.IsExpired = expired

	return changed
}

// MinDeviceCodeLength is the shortest device code, in characters, accepted by format
// validation.
const MinDeviceCodeLength = 10

// ValidDeviceCodeFormat checks the device code shape without touching the network.
func ValidDeviceCodeFormat(code string) bool {
	return utf8.RuneCountInString(code) >= MinDeviceCodeLength
}
