// Package validate checks posts for structural and metadata problems.
//
// Validation is separate from parsing: the parser accepts anything, and the
// functions here report what an author should fix. Every function returns
// a Report, empty when nothing was found.
package validate

import (
	"fmt"
	"strings"
)

// Severity of an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeMissingRequiredField     = "MISSING_REQUIRED_FIELD"
	CodeInvalidDateFormat        = "INVALID_DATE_FORMAT"
	CodeInvalidTagsFormat        = "INVALID_TAGS_FORMAT"
	CodeInvalidReadTimeFormat    = "INVALID_READ_TIME_FORMAT"
	CodeMissingRecommendedField  = "MISSING_RECOMMENDED_FIELD"
	CodeUnknownField             = "UNKNOWN_FIELD"
	CodeNoHeadings               = "NO_HEADINGS"
	CodeLongParagraph            = "LONG_PARAGRAPH"
	CodeUnbalancedCodeBlocks     = "UNBALANCED_CODE_BLOCKS"
	CodeEmptyLinkText            = "EMPTY_LINK_TEXT"
	CodeEmptyLinkURL             = "EMPTY_LINK_URL"
	CodeEmptyImageURL            = "EMPTY_IMAGE_URL"
	CodeEmptyContent             = "EMPTY_CONTENT"
	CodeSmallTable               = "SMALL_TABLE"
	CodeInconsistentTableColumns = "INCONSISTENT_TABLE_COLUMNS"
	CodeMissingImageSrc          = "MISSING_IMAGE_SRC"
	CodeMissingImageAlt          = "MISSING_IMAGE_ALT"
	CodeEmptyCodeBlock           = "EMPTY_CODE_BLOCK"
	CodeMissingRequiredPostField = "MISSING_REQUIRED_POST_FIELDS"
	CodeNoFrontmatter            = "NO_FRONTMATTER"
)

// Issue is a single finding. Line is 1-based and zero when the finding has
// no location.
type Issue struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report collects the errors and warnings of one validation call.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func newReport() *Report {
	return &Report{Errors: []Issue{}, Warnings: []Issue{}}
}

// Valid reports whether the report holds no errors. Warnings never make a
// report invalid.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Has reports whether any issue carries code.
func (r Report) Has(code string) bool {
	for _, list := range [][]Issue{r.Errors, r.Warnings} {
		for _, is := range list {
			if is.Code == code {
				return true
			}
		}
	}
	return false
}

func (r *Report) errorf(code string, line int, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	})
}

func (r *Report) warn(code string, line int, suggestion, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{
		Severity:   SeverityWarning,
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		Line:       line,
		Suggestion: suggestion,
	})
}

// merge appends other's issues, shifting located issues down by offset lines.
func (r *Report) merge(other Report, offset int) {
	shift := func(list []Issue) []Issue {
		out := make([]Issue, len(list))
		for i, is := range list {
			if is.Line > 0 {
				is.Line += offset
			}
			out[i] = is
		}
		return out
	}
	r.Errors = append(r.Errors, shift(other.Errors)...)
	r.Warnings = append(r.Warnings, shift(other.Warnings)...)
}

// Format renders the report as a human readable summary.
func (r Report) Format() string {
	var b strings.Builder
	if r.Valid() {
		b.WriteString("Validation passed")
	} else {
		b.WriteString("Validation failed")
	}
	if len(r.Errors) > 0 {
		b.WriteString("\n\nErrors:")
		for _, is := range r.Errors {
			b.WriteString("\n  - [" + is.Code + "] " + is.Message + location(is.Line))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n\nWarnings:")
		for _, is := range r.Warnings {
			b.WriteString("\n  - [" + is.Code + "] " + is.Message + location(is.Line))
			if is.Suggestion != "" {
				b.WriteString("\n    hint: " + is.Suggestion)
			}
		}
	}
	return b.String()
}

func location(line int) string {
	if line <= 0 {
		return ""
	}
	return fmt.Sprintf(" (line %d)", line)
}
