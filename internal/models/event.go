package models

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// ChangeEvent is one entry of the order change feed. OldRecord carries the
// prior state when the store knows it (updates, deletes); nil means the prior
// status is unknown.
type ChangeEvent struct {
	Type      EventType `json:"type"`
	Record    Order     `json:"record"`
	OldRecord *Order    `json:"old_record,omitempty"`
}
