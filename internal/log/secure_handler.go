package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// personalKeys are attribute keys whose values are always masked.
// Keys are compared lower-cased with "-" and " " folded to "_", so
// "First Name" and "first-name" match "first_name".
var personalKeys = map[string]bool{
	// Contact details
	"email":         true,
	"email_address": true,
	"e_mail":        true,
	"phone":         true,
	"phone_number":  true,
	"mobile":        true,
	"fax":           true,

	// People
	"first_name":  true,
	"last_name":   true,
	"full_name":   true,
	"person":      true,
	"person_name": true,
	"contact":     true,
	"ssn":         true,
	"dob":         true,

	// Street address. City, state and postal code are reported on
	// aggregate and stay readable.
	"address":        true,
	"street":         true,
	"street_address": true,
	"address_line_1": true,
	"address_line_2": true,

	// Connection secrets
	"password": true,
	"token":    true,
	"secret":   true,
}

// personalKeywords mask any key that contains them.
var personalKeywords = []string{
	"email", "phone", "password", "secret", "token", "birth", "street",
}

// personalPatterns mask string values regardless of key name. They catch
// personal data that reaches a log through a generic key such as a row
// sample.
var personalPatterns = []*regexp.Regexp{
	// E-mail addresses
	regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`),

	// North American phone numbers: 555-123-4567, (555) 123-4567, +1 555 123 4567
	regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\b\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}\b`),

	// US social security numbers
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
}

// MaskValue is the string used to replace personal values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks personal data in
// attributes before the wrapped handler sees them.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and passes it on.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks attrs and returns a handler carrying them.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup returns a handler that nests attributes under name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a single attribute, descending into groups.
func maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if IsPersonalKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); ContainsPersonalData(s) {
			return slog.String(a.Key, MaskString(s))
		}
	case slog.KindAny:
		// Errors and Stringers often embed offending cell values.
		if v := a.Value.Any(); v != nil {
			if s := fmt.Sprint(v); ContainsPersonalData(s) {
				return slog.String(a.Key, MaskString(s))
			}
		}
	}
	return a
}

// normalizeKey folds a column or attribute name to snake case.
func normalizeKey(key string) string {
	return strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(key)))
}

// IsPersonalKey reports whether values under key are personal data.
// Case, spaces and dashes in key are ignored.
func IsPersonalKey(key string) bool {
	k := normalizeKey(key)
	if personalKeys[k] {
		return true
	}
	for _, kw := range personalKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// ContainsPersonalData reports whether s contains something that looks
// like an e-mail address, a phone number or a social security number.
func ContainsPersonalData(s string) bool {
	for _, p := range personalPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// MaskString replaces every personal-data match in s with MaskValue and
// keeps the rest of the text.
func MaskString(s string) string {
	for _, p := range personalPatterns {
		s = p.ReplaceAllString(s, MaskValue)
	}
	return s
}

// Level returns Debug when verbose is set and Warn otherwise.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a text logger writing to w that masks personal
// data. verbose lowers the level from Warn to Debug.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(verbose)}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, opts)))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(verbose)}
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, opts)))
}

// Format names a log output format.
type Format string

const (
	// FormatText is slog's key=value format.
	FormatText Format = "text"
	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
)

// New returns a secure logger for the named format.
func New(w io.Writer, verbose bool, format Format) (*slog.Logger, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatText, "":
		return NewSecureLogger(w, verbose), nil
	case FormatJSON:
		return NewSecureJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
