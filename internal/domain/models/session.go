package models

import "time"

// ActiveSession is an in-progress timed activity that has not been committed yet.
type ActiveSession struct {
	Kind       RecordType `json:"kind"`
	StartTime  time.Time  `json:"start_time"`
	BreastSide string     `json:"breast_side,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// SessionMetadata carries the kind-specific values captured when a session starts.
type SessionMetadata struct {
	BreastSide string `json:"breast_side"`
	Note       string `json:"note"`
}
