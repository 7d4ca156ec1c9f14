package model

import "time"

// DeviceResult is an outcome of a single relay call.
type DeviceResult struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// ConnectivityReport aggregates outcomes of a test sweep or a message send.
type ConnectivityReport struct {
	Timestamp    time.Time      `json:"timestamp"`
	SuccessCount int            `json:"successCount"`
	TotalCount   int            `json:"totalCount"`
	Results      []DeviceResult `json:"results"`
}

// NewConnectivityReport tallies results.
func NewConnectivityReport(ts time.Time, results []DeviceResult) ConnectivityReport {
	r := ConnectivityReport{
		Timestamp:  ts.UTC(),
		TotalCount: len(results),
		Results:    results,
	}

	if r.Results == nil {
		r.Results = []DeviceResult{}
	}

	for _, res := range results {
		if res.Success {
			r.SuccessCount++
		}
	}

	return r
}

// Failed returns the number of failed outcomes.
func (r ConnectivityReport) Failed() int {
	return r.TotalCount - r.SuccessCount
}
