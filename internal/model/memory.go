package model

import (
	"time"
)

// MemorySnapshot is a point-in-time view of system-wide memory. A fresh
// snapshot is produced on every monitor tick and passed around by value;
// it is never mutated after capture.
type MemorySnapshot struct {
	TotalBytes int64     `json:"total_bytes"`
	UsedBytes  int64     `json:"used_bytes"`
	FreeBytes  int64     `json:"free_bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

// UsedFraction returns used/total, or 0 when the total is unknown
// (e.g. the sensor read failed and the snapshot is zeroed).
func (s MemorySnapshot) UsedFraction() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.TotalBytes)
}
