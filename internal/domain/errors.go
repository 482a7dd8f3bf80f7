package domain

import "errors"

var (
	// ErrNoChunks is returned when ingestion extracted no text at all.
	ErrNoChunks = errors.New("no text chunks extracted")

	// ErrIndexMissing is returned when the index artifacts are not on disk.
	ErrIndexMissing = errors.New("index not found")

	// ErrEmbeddingMismatch is returned when the index was built with a different embedding function.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrExternalCall wraps network, auth and non-200 failures from the language model endpoint.
	ErrExternalCall = errors.New("language model call failed")
)

const (
	FailureInvalidJSON = "invalid_json_from_model"
	FailureEmptyInput  = "empty_input"
)

// ReplyFailure is the structured payload returned instead of an assessment.
type ReplyFailure struct {
	Code     string `json:"error"`
	Message  string `json:"message,omitempty"`
	RawReply string `json:"raw_reply,omitempty"`
}

func (f *ReplyFailure) Error() string {
	if f.Message != "" {
		return f.Code + ": " + f.Message
	}
	return f.Code
}
