package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.
// Codes are "<MODULE>_<NNN>".
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeBadRequest    ErrorCode = "COMMON_002"
	ErrCodeNotFound      ErrorCode = "COMMON_005"
	ErrCodeValidation    ErrorCode = "COMMON_010"
	ErrCodeSerialization ErrorCode = "COMMON_011"
	ErrCodeCancelled     ErrorCode = "COMMON_017"
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidSMILES ErrorCode = "MOL_001"
	ErrCodeMoleculeParsingFailed ErrorCode = "MOL_006"
)

// Reaction Feature Module Error Codes
const (
	ErrCodeReactionBatchEmpty     ErrorCode = "RXN_001"
	ErrCodeReactionAtomMapInvalid ErrorCode = "RXN_002"
	ErrCodeReactionAtomLimit      ErrorCode = "RXN_003"
	ErrCodeReactionEditInvalid    ErrorCode = "RXN_004"
	ErrCodeReactionExportFailed   ErrorCode = "RXN_005"
)

// Short aliases used at call sites.
const (
	CodeOK                = ErrorCode("OK")
	CodeUnknown           = ErrorCode("UNKNOWN")
	CodeInternal          = ErrCodeInternal
	CodeInvalidParam      = ErrCodeBadRequest
	CodeNotFound          = ErrCodeNotFound
	CodeValidation        = ErrCodeValidation
	CodeSerialization     = ErrCodeSerialization
	CodeCancelled         = ErrCodeCancelled
	CodeInvalidSMILES     = ErrCodeMoleculeInvalidSMILES
	CodeParsingFailed     = ErrCodeMoleculeParsingFailed
	CodeEmptyBatch        = ErrCodeReactionBatchEmpty
	CodeAtomMapInvalid    = ErrCodeReactionAtomMapInvalid
	CodeAtomLimitExceeded = ErrCodeReactionAtomLimit
	CodeInvalidEdit       = ErrCodeReactionEditInvalid
	CodeExportFailed      = ErrCodeReactionExportFailed
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:      "internal error",
	ErrCodeBadRequest:    "bad request",
	ErrCodeNotFound:      "resource not found",
	ErrCodeValidation:    "validation failed",
	ErrCodeSerialization: "serialization failed",
	ErrCodeCancelled:     "operation cancelled",

	ErrCodeMoleculeInvalidSMILES: "invalid SMILES format",
	ErrCodeMoleculeParsingFailed: "failed to parse molecule",

	ErrCodeReactionBatchEmpty:     "reaction batch is empty",
	ErrCodeReactionAtomMapInvalid: "invalid atom-map numbering",
	ErrCodeReactionAtomLimit:      "atom count exceeds limit",
	ErrCodeReactionEditInvalid:    "invalid reaction edit",
	ErrCodeReactionExportFailed:   "tensor export failed",
}

// ErrorCodeExit maps ErrorCodes to CLI process exit codes.  Input problems
// exit with 2, everything else with 1.
var ErrorCodeExit = map[ErrorCode]int{
	ErrCodeBadRequest:             2,
	ErrCodeValidation:             2,
	ErrCodeMoleculeInvalidSMILES:  2,
	ErrCodeReactionBatchEmpty:     2,
	ErrCodeReactionAtomMapInvalid: 2,
	ErrCodeReactionAtomLimit:      2,
	ErrCodeReactionEditInvalid:    2,
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ExitCodeForCode returns the process exit status for an ErrorCode.
func ExitCodeForCode(code ErrorCode) int {
	if code == CodeOK {
		return 0
	}
	if c, ok := ErrorCodeExit[code]; ok {
		return c
	}
	return 1
}

// IsInputError reports whether code describes caller-supplied bad input.
func IsInputError(code ErrorCode) bool {
	return ExitCodeForCode(code) == 2
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
