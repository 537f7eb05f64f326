package apperrors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors (fatal, not retried)
const (
	// ErrCodeInvalidInput indicates a malformed request (e.g. a bad source URL).
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodePayloadTooLarge indicates the episode audio exceeds the download cap.
	ErrCodePayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	// ErrCodeAudioUnreadable indicates the audio duration could not be probed.
	ErrCodeAudioUnreadable ErrorCode = "AUDIO_UNREADABLE"
)

// Source-access errors
const (
	// ErrCodePermissionDenied indicates the audio source rejected the download.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external collaborator
	// (ASR worker, LLM backend).
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
