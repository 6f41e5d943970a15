package rejection

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	iconerrors "github.com/conneroisu/iconward/internal/errors"
)

const detailKeyPrefix = "detail."

var englishMessages = map[string]string{
	string(iconerrors.CodeInvalidType):            "%s: the file is not an SVG image",
	string(iconerrors.CodeFilesizeUnreadable):     "%s: the file size could not be determined",
	string(iconerrors.CodeFileTooLarge):           "%s: file exceeds the maximum size of %d KB",
	string(iconerrors.CodeReadError):              "%s: the file could not be read",
	string(iconerrors.CodeIconLimitReached):       "%s: skipped because the limit of %d custom icons was reached",
	string(iconerrors.CodeEmptyAfterSanitize):     "%s: no allowed SVG content remained after sanitization",
	string(iconerrors.CodeDOMImportFailed):        "%s: the SVG markup could not be parsed",
	string(iconerrors.CodeUnsafeUseReference):     "%s: contains an unsafe reference (%s)",
	string(iconerrors.CodeDOMExportFailed):        "%s: the sanitized SVG could not be serialized",
	string(iconerrors.CodeValidationFailed):       "%s: failed validation (%s)",
	string(iconerrors.CodeEmptyOriginal):          "%s: the file is empty",
	string(iconerrors.CodeMismatchedSanitization): "%s: contains markup that is not allowed",
	string(iconerrors.CodeEmptyIconKey):           "%s: the file name does not produce a usable icon key",
	string(iconerrors.CodeDuplicateIconKey):       "%s: another file already produces the icon key %q",

	detailKeyPrefix + string(iconerrors.DetailInvalidFragmentIdentifier): "the fragment identifier is malformed",
	detailKeyPrefix + string(iconerrors.DetailUploadsContextMissing):     "external references are not allowed here",
	detailKeyPrefix + string(iconerrors.DetailInvalidURL):                "the URL is malformed",
	detailKeyPrefix + string(iconerrors.DetailHostMismatch):              "it points to another host",
	detailKeyPrefix + string(iconerrors.DetailPortMismatch):              "it points to another port",
	detailKeyPrefix + string(iconerrors.DetailEmptyPath):                 "it has no path",
	detailKeyPrefix + string(iconerrors.DetailPathTraversal):             "it climbs out of its directory",
	detailKeyPrefix + string(iconerrors.DetailOutsideUploads):            "it points outside the uploads location",
	detailKeyPrefix + string(iconerrors.DetailEmptyRelativePath):         "it names the uploads location itself",
	detailKeyPrefix + string(iconerrors.DetailOutsideBaseDir):            "it resolves outside the uploads directory",

	"unknown": "%s: was rejected (%s)",
}

// Formatter renders records as sentences using an x/text message catalog.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns an English formatter.
func NewFormatter() *Formatter {
	return NewFormatterFor(language.English)
}

// NewFormatterFor returns a formatter for tag. Tags without translations
// fall back to English.
func NewFormatterFor(tag language.Tag) *Formatter {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range englishMessages {
		// SetString only fails for malformed tags.
		_ = b.SetString(language.English, key, msg)
	}
	return &Formatter{printer: message.NewPrinter(tag, message.Catalog(b))}
}

// Format renders one record.
func (f *Formatter) Format(r Record) string {
	p := f.printer
	key := string(r.Reason)

	switch r.Reason {
	case iconerrors.CodeFileTooLarge:
		return p.Sprintf(key, r.File, contextInt(r, iconerrors.ContextMaxBytes)/1024)
	case iconerrors.CodeIconLimitReached:
		return p.Sprintf(key, r.File, contextInt(r, iconerrors.ContextLimit))
	case iconerrors.CodeDuplicateIconKey:
		return p.Sprintf(key, r.File, r.Context[iconerrors.ContextKey])
	case iconerrors.CodeUnsafeUseReference, iconerrors.CodeValidationFailed:
		return p.Sprintf(key, r.File, f.detail(r))
	case iconerrors.CodeInvalidType,
		iconerrors.CodeFilesizeUnreadable,
		iconerrors.CodeReadError,
		iconerrors.CodeEmptyAfterSanitize,
		iconerrors.CodeDOMImportFailed,
		iconerrors.CodeDOMExportFailed,
		iconerrors.CodeEmptyOriginal,
		iconerrors.CodeMismatchedSanitization,
		iconerrors.CodeEmptyIconKey:
		return p.Sprintf(key, r.File)
	default:
		return p.Sprintf("unknown", r.File, key)
	}
}

func (f *Formatter) detail(r Record) string {
	detail := r.Context[iconerrors.ContextDetail]
	if detail == "" {
		return "unspecified"
	}
	key := detailKeyPrefix + detail
	if _, ok := englishMessages[key]; !ok {
		return detail
	}
	return f.printer.Sprintf(key)
}

func contextInt(r Record, key string) int {
	n, err := strconv.Atoi(r.Context[key])
	if err != nil {
		return 0
	}
	return n
}
