package types

// ChangeOp identifies the kind of mutation behind a ChangeEvent.
type ChangeOp string

// Mutation kinds.
const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent is published by a note store after a durable mutation.
//
// Delivery is at-least-once and ordered per store: Seq grows by one for every
// event a store publishes, and ID is unique so subscribers can drop repeats.
type ChangeEvent struct {
	ID     string   `json:"id"`
	Seq    uint64   `json:"seq"`
	Op     ChangeOp `json:"op"`
	NoteID int64    `json:"note_id"`
	Source string   `json:"source"`
}

// ChangeHandler receives change events. Handlers run on the goroutine that
// performed the mutation and must not assume any particular thread.
type ChangeHandler func(ChangeEvent)
