package errors

// Error codes used by the bufferpool package. Compared with Is(err, CodeX)
// rather than string matching or type assertion.
const (
	ErrUnknownPage Code = "UnknownPage"
	ErrCorruptPage Code = "CorruptPage"
	ErrOffsetRange Code = "OffsetOutOfRange"
)
