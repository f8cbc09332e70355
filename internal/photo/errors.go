package photo

import "errors"

// ValidationError rejects an upload before any side effect. The message is the
// exact body clients receive in the error envelope.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

var (
	ErrNoFilePart    = &ValidationError{msg: "No file part"}
	ErrMissingNames  = &ValidationError{msg: "Animal name and sanctuary name are required"}
	ErrNoFilename    = &ValidationError{msg: "No selected file"}
	ErrExtNotAllowed = &ValidationError{msg: "File type not allowed"}
)

// ErrFileNotFound signals that no blob exists under the requested name.
var ErrFileNotFound = errors.New("file not found")
