package model

import "time"

// ScanRun summarises one pass of the scanner over the monitored
// addresses.
type ScanRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Addresses int `json:"addresses"`
	Messages  int `json:"messages"`
	Extracted int `json:"extracted"`
	Added     int `json:"added"`
	Failed    int `json:"failed"`
}

// Duration is the wall time the run took.
func (r ScanRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
