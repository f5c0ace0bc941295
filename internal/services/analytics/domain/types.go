// Package domain holds types for annotation usage analytics
package domain

import "time"

// Event is one recorded API call
type Event struct {
	ID       string // uuid, stamped on Record
	At       time.Time
	Endpoint string // analyze batch
	Texts    int

	Entities       int
	Problems       int
	Treatments     int
	Tests          int
	FromModel      int
	FromPattern    int
	FromDictionary int

	Threshold float64
	ElapsedMs int64
	UserID    string // api key id, empty when auth is disabled
}
