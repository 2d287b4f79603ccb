// Package diag carries luabind's error taxonomy and the diagnostics reported
// while generating bindings.
package diag

import (
	"fmt"
	"go/token"

	"github.com/cockroachdb/errors"
	"github.com/tliron/commonlog"
)

// Error kinds. Every positioned error unwraps to exactly one of these, so
// callers test the category with errors.Is.
var (
	// ErrConfiguration covers misuse of directives: conflicting getter/setter
	// merges, duplicated markers, malformed iterables.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedType is returned when a type matches no classification rule.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnimplemented marks shapes the generator knows about but cannot emit.
	ErrUnimplemented = errors.New("not yet supported")
)

// Error is a generation-time failure bound to a source position.
type Error struct {
	Kind error
	Pos  token.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the kind sentinel to errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

// Newf builds a positioned error of the given kind.
func Newf(kind error, pos token.Position, format string, args ...any) error {
	return errors.WithStack(&Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Configf is shorthand for a configuration error.
func Configf(pos token.Position, format string, args ...any) error {
	return Newf(ErrConfiguration, pos, format, args...)
}

// PositionOf digs the source position out of err, if any.
func PositionOf(err error) (token.Position, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Pos, de.Pos.IsValid()
	}
	return token.Position{}, false
}

// Severity of a Diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Failure
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Diagnostic is one message surfaced to the user.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Message  string
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Reporter accumulates diagnostics and mirrors them to a commonlog logger.
// A Reporter is not safe for concurrent use.
type Reporter struct {
	log   commonlog.Logger
	diags []Diagnostic
}

// NewReporter creates a reporter logging under the given logger name.
func NewReporter(name string) *Reporter {
	return &Reporter{log: commonlog.GetLogger(name)}
}

// Infof records an informational diagnostic.
func (r *Reporter) Infof(pos token.Position, format string, args ...any) {
	r.add(Info, pos, fmt.Sprintf(format, args...))
}

// Warnf records a non-fatal warning.
func (r *Reporter) Warnf(pos token.Position, format string, args ...any) {
	r.add(Warning, pos, fmt.Sprintf(format, args...))
}

// Fail records a fatal error. The error itself still has to be returned by
// the caller; this only makes it visible in the report.
func (r *Reporter) Fail(err error) {
	pos, _ := PositionOf(err)
	r.add(Failure, pos, err.Error())
}

// Diagnostics returns everything recorded so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Warnings returns only warning-level diagnostics.
func (r *Reporter) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

func (r *Reporter) add(sev Severity, pos token.Position, msg string) {
	r.diags = append(r.diags, Diagnostic{Severity: sev, Pos: pos, Message: msg})
	if r.log == nil {
		return
	}
	switch sev {
	case Info:
		r.log.Info(msg, "pos", pos.String())
	case Warning:
		r.log.Warning(msg, "pos", pos.String())
	default:
		r.log.Error(msg, "pos", pos.String())
	}
}
