package repository

// SequenceRepository hands out consecutive numbers. NextSequence increments
// the (docType, year) counter atomically and returns the new value.
type SequenceRepository interface {
	NextSequence(docType string, year int) (int64, error)
}
