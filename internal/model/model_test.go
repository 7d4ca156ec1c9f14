package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ptime "github.com/ferux/pushcenter/internal/time"
)

func date(t *testing.T, s string) *ptime.Date {
	d, err := ptime.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}

	return &d
}

func TestDeviceRefresh(t *testing.T) {
	a := assert.New(t)
	today := *date(t, "2026-10-14")

	d := Device{ID: "1", ExpireDate: date(t, "2026-10-13")}
	a.True(d.Refresh(today))
	a.True(d.IsExpired)
	a.False(d.Refresh(today))

	d.ExpireDate = date(t, "2026-10-14")
	a.True(d.Refresh(today))
	a.False(d.IsExpired, "device expiring today is still active")

	d.ExpireDate = nil
	d.IsExpired = true
	a.True(d.Refresh(today))
	a.False(d.IsExpired)
}

func TestValidDeviceCodeFormat(t *testing.T) {
	a := assert.New(t)
	a.False(ValidDeviceCodeFormat(""))
	a.False(ValidDeviceCodeFormat("short"))
	a.False(ValidDeviceCodeFormat("123456789"))
	a.True(ValidDeviceCodeFormat("abcdefghij"))

	a.False(ValidDeviceCodeFormat("设备代码设备代码设"), "nine characters")
	a.True(ValidDeviceCodeFormat("设备代码设备代码设备"))
}

func TestNewConnectivityReport(t *testing.T) {
	a := assert.New(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	r := NewConnectivityReport(now, []DeviceResult{
		{DeviceID: "1", Success: true},
		{DeviceID: "2", Success: false, Error: "boom"},
		{DeviceID: "3", Success: true},
	})
	a.Equal(2, r.SuccessCount)
	a.Equal(3, r.TotalCount)
	a.Equal(1, r.Failed())

	empty := NewConnectivityReport(now, nil)
	a.NotNil(empty.Results)
	a.Equal(0, empty.TotalCount)
}

func TestStateClone(t *testing.T) {
	a := assert.New(t)
	s := DefaultState()
	s.Devices = append(s.Devices, Device{ID: "1", ExpireDate: date(t, "2026-01-01")})

	c := s.Clone()
	c.Devices[0].Name = "changed"
	c.Devices[0].ExpireDate.Day = 5

	a.Empty(s.Devices[0].Name)
	a.Equal(1, s.Devices[0].ExpireDate.Day)
}

func TestNormalize(t *testing.T) {
	a := assert.New(t)
	var s SystemState
	s.Normalize()
	a.Equal(DefaultState(), s)
}

func TestErrorKinds(t *testing.T) {
	a := assert.New(t)
	a.True(IsInput(fmt.Errorf("adding: %w", ErrEmptyName)))
	a.False(IsInput(ErrOffline))
	a.True(IsConnectivity(fmt.Errorf("sending: %w", ErrOffline)))
	a.False(IsConnectivity(ErrNotFound))
}
