package models

import "time"

// PendingOp is the kind of write waiting to be pushed.
type PendingOp string

const (
	PendingUpsert PendingOp = "upsert"
	PendingDelete PendingOp = "delete"
)

// PendingWrite is a journaled local change whose remote write failed.
// Item holds the full local state for upserts and is nil for deletes.
type PendingWrite struct {
	ID       string
	Owner    string
	Op       PendingOp
	Item     *Item
	QueuedAt time.Time
}
