package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential means a remote service was selected without
	// its API key or credentials configured.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnsupportedFileType is returned before any record is created when
	// an upload's extension is not accepted for its content type.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidRequest marks missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmptyExtraction means the extractor succeeded but recovered no text.
	ErrEmptyExtraction = errors.New("extraction returned empty text")

	// ErrTranscriptsDisabled means the video owner disabled captions.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

	// ErrNoTranscript means no transcript exists in any requested language.
	ErrNoTranscript = errors.New("no transcript found for this video in the requested languages")

	// ErrUnparseableResponse means a speech-to-text reply was not valid JSON.
	ErrUnparseableResponse = errors.New("unparseable speech-to-text response")

	// ErrEmptyTranscript means a speech-to-text reply carried no transcript.
	ErrEmptyTranscript = errors.New("speech-to-text returned no transcript")
)

// ServiceError is a non-2xx reply from a remote ingestion service.
type ServiceError struct {
	Service string
	Status  int
	Body    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Service, e.Status, e.Body)
}
