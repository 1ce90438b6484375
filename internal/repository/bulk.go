package repository

// BulkOutcome classifies one record of a bulk insert.
type BulkOutcome int

const (
	// BulkNotAttempted marks records never reached because the batch aborted.
	BulkNotAttempted BulkOutcome = iota
	// BulkInserted marks records written successfully.
	BulkInserted
	// BulkDuplicate marks records skipped by a unique-constraint conflict.
	BulkDuplicate
)

// BulkReport carries per-record outcomes of a bulk insert. Inserts are not
// all-or-nothing: a conflicting record is skipped while its siblings land.
type BulkReport struct {
	Inserted int
	Outcomes []BulkOutcome
}
