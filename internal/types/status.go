package types

// Status is a type for the record-level status of a persisted resource.
// This tracks the storage lifecycle of a row and is independent of any
// domain state machine (e.g. invoice status).
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
