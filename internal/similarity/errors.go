package similarity

import (
	"errors"
	"fmt"
)

// ErrEmptySequence means a video produced no usable frames after sampling.
var ErrEmptySequence = errors.New("empty sequence")

const (
	CollaboratorDetector = "detector"
	CollaboratorDecoder  = "decoder"
)

// SequenceError names which side of a comparison failed to produce frames.
type SequenceError struct {
	Video string
	Err   error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("video %s: %v", e.Video, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}

// CollaboratorError wraps a failure of the pose detector or video decoder.
// No distance is produced when one occurs.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
