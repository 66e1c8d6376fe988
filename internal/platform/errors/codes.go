// Package errors provides structured error handling for the advisory engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Selection errors (startup-fatal)
	CodeSelectionNoActive           Code = "SELECTION_NO_ACTIVE_CATALOG"
	CodeSelectionMissingSupersedes  Code = "SELECTION_MISSING_SUPERSEDES"
	CodeSelectionDanglingSupersedes Code = "SELECTION_DANGLING_SUPERSEDES"

	// Validation errors (startup-fatal)
	CodeValidationCanonicalMismatch Code = "VALIDATION_CANONICAL_MISMATCH"
	CodeValidationFingerprintFormat Code = "VALIDATION_FINGERPRINT_FORMAT"
	CodeValidationDuplicateGateID   Code = "VALIDATION_DUPLICATE_GATE_ID"
	CodeValidationDanglingReference Code = "VALIDATION_DANGLING_REFERENCE"
	CodeValidationEmptyGate         Code = "VALIDATION_EMPTY_GATE"

	// Compilation errors (startup-fatal)
	CodeCompilationUnknownToken Code = "COMPILATION_UNKNOWN_TOKEN"
	CodeCompilationUnknownKind  Code = "COMPILATION_UNKNOWN_KIND"
	CodeCompilationBadTargets   Code = "COMPILATION_BAD_TARGETS"

	// Request-scoped errors
	CodeGateUnknown    Code = "GATE_UNKNOWN"
	CodeVersionUnknown Code = "VERSION_UNKNOWN"
	CodeOverlayInvalid Code = "OVERLAY_INVALID"

	// Document errors (startup-fatal)
	CodeDocumentUnreadable Code = "DOCUMENT_UNREADABLE"
	CodeDocumentEmpty      Code = "DOCUMENT_EMPTY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Fatal reports whether the code belongs to the startup-fatal tier.
// Fatal errors abort the ingest, validate, compile pipeline; no partial
// artifact is ever published past one of these.
func (c Code) Fatal() bool {
	switch c {
	case CodeSelectionNoActive,
		CodeSelectionMissingSupersedes,
		CodeSelectionDanglingSupersedes,
		CodeValidationCanonicalMismatch,
		CodeValidationFingerprintFormat,
		CodeValidationDuplicateGateID,
		CodeValidationDanglingReference,
		CodeValidationEmptyGate,
		CodeCompilationUnknownToken,
		CodeCompilationUnknownKind,
		CodeCompilationBadTargets,
		CodeDocumentUnreadable,
		CodeDocumentEmpty:
		return true
	}
	return false
}
