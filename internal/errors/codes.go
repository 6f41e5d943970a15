package errors

// Code is a rejection reason. The set is closed: every value a custom icon
// can be rejected with is declared here.
type Code string

// Rejection reasons recorded for custom icon files.
const (
	CodeInvalidType            Code = "invalid_type"
	CodeFilesizeUnreadable     Code = "filesize_unreadable"
	CodeFileTooLarge           Code = "file_too_large"
	CodeReadError              Code = "read_error"
	CodeIconLimitReached       Code = "icon_limit_reached"
	CodeEmptyAfterSanitize     Code = "empty_after_sanitize"
	CodeDOMImportFailed        Code = "dom_import_failed"
	CodeUnsafeUseReference     Code = "unsafe_use_reference"
	CodeDOMExportFailed        Code = "dom_export_failed"
	CodeValidationFailed       Code = "validation_failed"
	CodeEmptyOriginal          Code = "empty_original"
	CodeMismatchedSanitization Code = "mismatched_sanitization"
	CodeEmptyIconKey           Code = "empty_icon_key"
	CodeDuplicateIconKey       Code = "duplicate_icon_key"
)

// Reference validation details. These travel as the "detail" context value
// of an unsafe_use_reference rejection.
const (
	DetailInvalidFragmentIdentifier Code = "invalid_fragment_identifier"
	DetailUploadsContextMissing     Code = "uploads_context_missing"
	DetailInvalidURL                Code = "invalid_url"
	DetailHostMismatch              Code = "host_mismatch"
	DetailPortMismatch              Code = "port_mismatch"
	DetailEmptyPath                 Code = "empty_path"
	DetailPathTraversal             Code = "path_traversal"
	DetailOutsideUploads            Code = "outside_uploads"
	DetailEmptyRelativePath         Code = "empty_relative_path"
	DetailOutsideBaseDir            Code = "outside_basedir"
)

// Context keys used by rejections.
const (
	ContextMaxBytes  = "max_bytes"
	ContextLimit     = "limit"
	ContextDetail    = "detail"
	ContextReference = "reference"
	ContextKey       = "key"
)

// Configuration error codes.
const (
	CodeConfigInvalid   Code = "config_invalid"
	CodeUploadsResolver Code = "uploads_unresolved"
)

// rejectionCodes lists every rejection reason in declaration order.
var rejectionCodes = []Code{
	CodeInvalidType,
	CodeFilesizeUnreadable,
	CodeFileTooLarge,
	CodeReadError,
	CodeIconLimitReached,
	CodeEmptyAfterSanitize,
	CodeDOMImportFailed,
	CodeUnsafeUseReference,
	CodeDOMExportFailed,
	CodeValidationFailed,
	CodeEmptyOriginal,
	CodeMismatchedSanitization,
	CodeEmptyIconKey,
	CodeDuplicateIconKey,
}

// RejectionCodes returns every rejection reason.
func RejectionCodes() []Code {
	out := make([]Code, len(rejectionCodes))
	copy(out, rejectionCodes)
	return out
}

// IsRejection reports whether c is one of the rejection reasons.
func (c Code) IsRejection() bool {
	for _, known := range rejectionCodes {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the code as written in persisted records.
func (c Code) String() string {
	return string(c)
}
