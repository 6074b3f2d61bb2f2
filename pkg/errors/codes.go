package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeConflict       ErrorCode = "COMMON_004"
	ErrCodeTimeout        ErrorCode = "COMMON_005"
	ErrCodeValidation     ErrorCode = "COMMON_006"
	ErrCodeDatabaseError  ErrorCode = "COMMON_007"
	ErrCodeCacheError     ErrorCode = "COMMON_008"
	ErrCodeConfigInvalid  ErrorCode = "COMMON_009"
	ErrCodeNotImplemented ErrorCode = "COMMON_010"
)

// Molecular structure error codes.
const (
	ErrCodeStructureInvalid   ErrorCode = "MOL_001"
	ErrCodeStructureEmpty     ErrorCode = "MOL_002"
	ErrCodeBondOutOfRange     ErrorCode = "MOL_003"
	ErrCodeBondOrderInvalid   ErrorCode = "MOL_004"
	ErrCodeSpeciesNotFound    ErrorCode = "MOL_005"
	ErrCodeSpeciesParseFailed ErrorCode = "MOL_006"
)

// Constraint enumeration error codes.
const (
	ErrCodeConstraintOverflow ErrorCode = "CON_001"
	ErrCodeConstraintMismatch ErrorCode = "CON_002"
)

// Reaction error codes.
const (
	ErrCodeMissingHighLevel ErrorCode = "RXN_001"
	ErrCodeEmptyReaction    ErrorCode = "RXN_002"
)

// Solver error codes.
const (
	ErrCodeSolverUnavailable ErrorCode = "SOL_001"
	ErrCodeProblemMalformed  ErrorCode = "SOL_002"
	ErrCodeSolverInternal    ErrorCode = "SOL_003"
)

// Estimation error codes.
const (
	ErrCodeNoReactionsFound  ErrorCode = "EST_001"
	ErrCodeEmptyBenchmarkSet ErrorCode = "EST_002"
)

// Quantity error codes.
const (
	ErrCodeUnknownUnit ErrorCode = "QTY_001"
)

// Aliases kept for call-site brevity.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeNotFound:       "resource not found",
	ErrCodeConflict:       "resource conflict",
	ErrCodeTimeout:        "operation timed out",
	ErrCodeValidation:     "validation failed",
	ErrCodeDatabaseError:  "database error",
	ErrCodeCacheError:     "cache error",
	ErrCodeConfigInvalid:  "invalid configuration",
	ErrCodeNotImplemented: "not implemented",

	ErrCodeStructureInvalid:   "invalid molecular structure",
	ErrCodeStructureEmpty:     "molecular structure has no atoms",
	ErrCodeBondOutOfRange:     "bond references an atom outside the structure",
	ErrCodeBondOrderInvalid:   "unsupported bond order",
	ErrCodeSpeciesNotFound:    "species not found",
	ErrCodeSpeciesParseFailed: "failed to parse species definition",

	ErrCodeConstraintOverflow: "constraint count exceeds the configured maximum",
	ErrCodeConstraintMismatch: "constraint vector length mismatch",

	ErrCodeMissingHighLevel: "benchmark species has no high-level enthalpy",
	ErrCodeEmptyReaction:    "reaction has no participating species",

	ErrCodeSolverUnavailable: "solver backend unavailable",
	ErrCodeProblemMalformed:  "malformed integer program",
	ErrCodeSolverInternal:    "solver internal failure",

	ErrCodeNoReactionsFound:  "no error-canceling reactions found",
	ErrCodeEmptyBenchmarkSet: "benchmark set is empty after pruning",

	ErrCodeUnknownUnit: "unknown physical unit",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode (e.g. "MOL").
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
