package casedb

// Case is one loaded-story record in the case history.
type Case struct {
	ID         int64  `json:"id"`
	Path       string `json:"path"`
	DeviceName string `json:"deviceName"`
	DeviceID   string `json:"deviceId"`
	NodeCount  int    `json:"nodeCount"`
	OpenedAt   string `json:"openedAt"`
	LastOpened string `json:"lastOpened"`
}

// Note is an examiner note attached to one node of a case.
type Note struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

// Store defines every case-history operation the application needs, so
// app code depends on the interface rather than a concrete backend.
type Store interface {
	// Case history
	RecordCase(c *Case) (int64, error)
	RecentCases(limit int) ([]Case, error)

	// Examiner notes, keyed by the load's stable node ids
	SaveNote(caseID int64, nodeID, text string) error
	Notes(caseID int64) ([]Note, error)

	// Per-node flag toggle; returns the new state
	ToggleFlag(caseID int64, nodeID string) (bool, error)
	Flags(caseID int64) ([]string, error)

	// Lifecycle
	Close() error
	Target() string
}
