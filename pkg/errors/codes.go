package errors

import (
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeBadRequest     ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_005"
	ErrCodeTimeout        ErrorCode = "COMMON_009"
	ErrCodeValidation     ErrorCode = "COMMON_010"
	ErrCodeSerialization  ErrorCode = "COMMON_011"
	ErrCodeCacheError     ErrorCode = "COMMON_013"
	ErrCodeNotImplemented ErrorCode = "COMMON_016"
	ErrCodeCanceled       ErrorCode = "COMMON_017"
	ErrCodeConfigInvalid  ErrorCode = "COMMON_018"
	ErrCodeFileUnreadable ErrorCode = "COMMON_019"
)

// Short aliases used at most call sites.
const (
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeNotImplemented = ErrCodeNotImplemented
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeFormatUnsupported ErrorCode = "MOL_002"
	ErrCodeMoleculeEmpty             ErrorCode = "MOL_003"
	ErrCodeAtomIndexOutOfRange       ErrorCode = "MOL_004"
	ErrCodeBondInvalid               ErrorCode = "MOL_005"
)

// Reaction Module Error Codes
const (
	ErrCodeParseError            ErrorCode = "RXN_001"
	ErrCodePatternError          ErrorCode = "RXN_002"
	ErrCodeInvalidTemplate       ErrorCode = "RXN_003"
	ErrCodeAmbiguousAttachment   ErrorCode = "RXN_004"
	ErrCodeDegenerateProbeResult ErrorCode = "RXN_005"
	ErrCodeFragmentationFailed   ErrorCode = "RXN_006"
	ErrCodeLinkerInvalid         ErrorCode = "RXN_007"
	ErrCodeProductLimitExceeded  ErrorCode = "RXN_008"
)

// ErrorCodeExitStatus maps ErrorCodes to process exit statuses used by the CLI.
var ErrorCodeExitStatus = map[ErrorCode]int{
	ErrCodeInternal:       1,
	ErrCodeBadRequest:     2,
	ErrCodeNotFound:       2,
	ErrCodeTimeout:        1,
	ErrCodeValidation:     2,
	ErrCodeSerialization:  1,
	ErrCodeCacheError:     1,
	ErrCodeNotImplemented: 1,
	ErrCodeCanceled:       130,
	ErrCodeConfigInvalid:  78,
	ErrCodeFileUnreadable: 66,

	ErrCodeMoleculeFormatUnsupported: 65,
	ErrCodeMoleculeEmpty:             65,
	ErrCodeAtomIndexOutOfRange:       1,
	ErrCodeBondInvalid:               65,

	ErrCodeParseError:            65,
	ErrCodePatternError:          65,
	ErrCodeInvalidTemplate:       2,
	ErrCodeAmbiguousAttachment:   1,
	ErrCodeDegenerateProbeResult: 1,
	ErrCodeFragmentationFailed:   1,
	ErrCodeLinkerInvalid:         78,
	ErrCodeProductLimitExceeded:  1,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:       "internal error",
	ErrCodeBadRequest:     "bad request",
	ErrCodeNotFound:       "resource not found",
	ErrCodeTimeout:        "operation timed out",
	ErrCodeValidation:     "validation failed",
	ErrCodeSerialization:  "serialization failed",
	ErrCodeCacheError:     "cache operation failed",
	ErrCodeNotImplemented: "not implemented",
	ErrCodeCanceled:       "operation canceled",
	ErrCodeConfigInvalid:  "invalid configuration",
	ErrCodeFileUnreadable: "file could not be read",

	ErrCodeMoleculeFormatUnsupported: "unsupported molecule file format",
	ErrCodeMoleculeEmpty:             "molecule has no atoms",
	ErrCodeAtomIndexOutOfRange:       "atom index out of range",
	ErrCodeBondInvalid:               "invalid bond",

	ErrCodeParseError:            "molecule could not be parsed",
	ErrCodePatternError:          "reaction pattern is malformed",
	ErrCodeInvalidTemplate:       "reaction template is not initialized",
	ErrCodeAmbiguousAttachment:   "atom has no unique hydrogen",
	ErrCodeDegenerateProbeResult: "probe did not yield exactly one product",
	ErrCodeFragmentationFailed:   "fragmentation failed",
	ErrCodeLinkerInvalid:         "linker must carry dummy atoms [1*] and [2*]",
	ErrCodeProductLimitExceeded:  "product limit exceeded",
}

// ExitStatusForCode returns the process exit status for an ErrorCode.
func ExitStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeExitStatus[code]; ok {
		return status
	}
	return 1
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsInputError reports whether the code blames the caller's input rather than the engine.
func IsInputError(code ErrorCode) bool {
	switch ModuleForCode(code) {
	case "MOL":
		return code != ErrCodeAtomIndexOutOfRange
	case "RXN":
		return code == ErrCodeParseError || code == ErrCodePatternError || code == ErrCodeLinkerInvalid || code == ErrCodeInvalidTemplate
	}
	return code == ErrCodeBadRequest || code == ErrCodeValidation || code == ErrCodeConfigInvalid
}

// ModuleForCode returns the module prefix for an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.SplitN(string(code), "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "UNKNOWN"
	}
	return parts[0]
}

//Personal.AI order the ending
