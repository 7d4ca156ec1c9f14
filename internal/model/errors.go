package model

import "errors"

type Error string

func (err Error) Error() string {
	return string(err)
}

const (
	ErrNotFound Error = "not found"
)

// InputError is returned when the caller passed unusable data. Nothing is mutated and no
// network call is made.
type InputError string

func (err InputError) Error() string {
	return "invalid input: " + string(err)
}

const (
	ErrEmptyTitle      InputError = "title is empty"
	ErrEmptyContent    InputError = "content is empty"
	ErrEmptyDeviceCode InputError = "device code is empty"
	ErrEmptyName       InputError = "device name is empty"
	ErrBadDeviceCode   InputError = "device code is too short"
	ErrInvalidTarget   InputError = "unknown target"
	ErrNoDevices       InputError = "no active devices to send to"
)

// ConnectivityError is returned when the host is offline at call time.
type ConnectivityError string

func (err ConnectivityError) Error() string {
	return "connectivity: " + string(err)
}

const (
	ErrOffline ConnectivityError = "network is offline"
)

// IsInput checks if err is caused by caller input.
func IsInput(err error) bool {
	var ie InputError
	return errors.As(err, &ie)
}

// IsConnectivity checks if err is caused by missing network.
func IsConnectivity(err error) bool {
	var ce ConnectivityError
	return errors.As(err, &ce)
}
