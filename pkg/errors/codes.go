package errors

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeConflict       ErrorCode = "COMMON_004"
	ErrCodeValidation     ErrorCode = "COMMON_005"
	ErrCodeSerialization  ErrorCode = "COMMON_006"
	ErrCodeNotImplemented ErrorCode = "COMMON_007"
)

// Note corpus error codes.
const (
	ErrCodeNoteNotFound   ErrorCode = "NOTE_001"
	ErrCodeNoteMalformed  ErrorCode = "NOTE_002"
	ErrCodeCorpusUnreadable ErrorCode = "NOTE_003"
)

// Extraction error codes.
const (
	ErrCodeLexiconEmpty    ErrorCode = "EXT_001"
	ErrCodeInvalidProfile  ErrorCode = "EXT_002"
	ErrCodeInvalidSpan     ErrorCode = "EXT_003"
	ErrCodeEntityWriteFailed ErrorCode = "EXT_004"
)

// Evaluation error codes.
const (
	ErrCodeGoldMissing       ErrorCode = "EVAL_001"
	ErrCodePredictionsMissing ErrorCode = "EVAL_002"
	ErrCodeMetricsComputeFailed ErrorCode = "EVAL_003"
)

// Run-manifest storage error codes.
const (
	ErrCodeManifestReadFailed  ErrorCode = "MAN_001"
	ErrCodeManifestWriteFailed ErrorCode = "MAN_002"
)

// Short aliases used at call sites.
const (
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
)
