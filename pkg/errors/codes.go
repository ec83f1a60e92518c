package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeNotImplemented     ErrorCode = "COMMON_010"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_011"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeValidation     = ErrCodeValidation
	CodeDBQueryError   = ErrCodeDatabaseError
	CodeCacheError     = ErrCodeCacheError
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("")
	CodeOK             = ErrorCode("OK")
)

// Molecule error codes.
const (
	ErrCodeInvalidSMILES          ErrorCode = "CHEM_001"
	ErrCodeStructureParseFailed   ErrorCode = "CHEM_002"
	ErrCodeFingerprintFailed      ErrorCode = "CHEM_003"
	ErrCodeFingerprintUnsupported ErrorCode = "CHEM_004"
	ErrCodeSimilarityFailed       ErrorCode = "CHEM_005"
	ErrCodeDescriptorFailed       ErrorCode = "CHEM_006"
	ErrCodeMoleculeNotFound       ErrorCode = "CHEM_007"
)

// Clustering error codes.
const (
	ErrCodeCutoffInvalid    ErrorCode = "CLU_001"
	ErrCodeDistanceMismatch ErrorCode = "CLU_002"
	ErrCodeClusteringFailed ErrorCode = "CLU_003"
)

// Dataset error codes.
const (
	ErrCodeDatasetReadFailed    ErrorCode = "DS_001"
	ErrCodeDatasetRowInvalid    ErrorCode = "DS_002"
	ErrCodeDatasetColumnMissing ErrorCode = "DS_003"
	ErrCodeDatasetEmpty         ErrorCode = "DS_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeInvalidSMILES:          http.StatusBadRequest,
	ErrCodeStructureParseFailed:   http.StatusBadRequest,
	ErrCodeFingerprintFailed:      http.StatusInternalServerError,
	ErrCodeFingerprintUnsupported: http.StatusBadRequest,
	ErrCodeSimilarityFailed:       http.StatusInternalServerError,
	ErrCodeDescriptorFailed:       http.StatusInternalServerError,
	ErrCodeMoleculeNotFound:       http.StatusNotFound,

	ErrCodeCutoffInvalid:    http.StatusBadRequest,
	ErrCodeDistanceMismatch: http.StatusBadRequest,
	ErrCodeClusteringFailed: http.StatusInternalServerError,

	ErrCodeDatasetReadFailed:    http.StatusBadRequest,
	ErrCodeDatasetRowInvalid:    http.StatusBadRequest,
	ErrCodeDatasetColumnMissing: http.StatusBadRequest,
	ErrCodeDatasetEmpty:         http.StatusBadRequest,
}

// HTTPStatus returns the HTTP status code for c, defaulting to 500 for
// unmapped codes.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
