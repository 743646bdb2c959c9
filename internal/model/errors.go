package model

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures of the distribution core.
type Kind int

const (
	KindDomain Kind = iota + 1
	KindConvergence
	KindEnvelope
	KindSamplingExhausted
	KindRootFinding
)

var (
	// ErrDomain reports invalid parameters or evaluation points.
	ErrDomain = errors.New("rcg: domain error")
	// ErrConvergence reports an integration, differentiation or series that missed its tolerance.
	ErrConvergence = errors.New("rcg: convergence error")
	// ErrEnvelopeConstruction reports that no dominating envelope could be built.
	ErrEnvelopeConstruction = errors.New("rcg: envelope construction error")
	// ErrSamplingExhausted reports a rejection loop that hit its proposal ceiling.
	ErrSamplingExhausted = errors.New("rcg: sampling exhausted")
	// ErrRootFinding reports a quantile that could not be bracketed or solved.
	ErrRootFinding = errors.New("rcg: root finding error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindDomain:
		return ErrDomain
	case KindConvergence:
		return ErrConvergence
	case KindEnvelope:
		return ErrEnvelopeConstruction
	case KindSamplingExhausted:
		return ErrSamplingExhausted
	case KindRootFinding:
		return ErrRootFinding
	default:
		return nil
	}
}

func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "DomainError"
	case KindConvergence:
		return "ConvergenceError"
	case KindEnvelope:
		return "EnvelopeConstructionError"
	case KindSamplingExhausted:
		return "SamplingExhaustedError"
	case KindRootFinding:
		return "RootFindingError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error carries the diagnostic context of a failed operation. errors.Is
// matches it against the sentinel of its Kind.
type Error struct {
	Kind      Kind
	Op        string  // операция, например "density.CDF"
	Params    *Params // nil, если ошибка не связана с параметрами
	Point     float64 // y, p или b, на котором упали
	Tolerance float64 // последний использованный допуск
	Estimate  float64 // оценка погрешности / счётчик, если есть
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Params != nil {
		fmt.Fprintf(&b, " [%s]", e.Params)
	}
	if e.Point != 0 {
		fmt.Fprintf(&b, " at %g", e.Point)
	}
	if e.Tolerance != 0 {
		fmt.Fprintf(&b, " tol=%g", e.Tolerance)
	}
	if e.Estimate != 0 {
		fmt.Fprintf(&b, " estimate=%g", e.Estimate)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// WithParams returns a copy of e annotated with p.
func (e *Error) WithParams(p Params) *Error {
	c := *e
	c.Params = &p
	return &c
}

func DomainError(op, format string, args ...any) *Error {
	return &Error{Kind: KindDomain, Op: op, Detail: fmt.Sprintf(format, args...)}
}

func ConvergenceError(op string, tol, estimate float64, detail string) *Error {
	return &Error{Kind: KindConvergence, Op: op, Tolerance: tol, Estimate: estimate, Detail: detail}
}

func EnvelopeError(op, detail string, err error) *Error {
	return &Error{Kind: KindEnvelope, Op: op, Detail: detail, Err: err}
}

func ExhaustedError(op string, proposals int) *Error {
	return &Error{
		Kind:     KindSamplingExhausted,
		Op:       op,
		Estimate: float64(proposals),
		Detail:   fmt.Sprintf("no acceptance after %d proposals", proposals),
	}
}

func RootFindingError(op string, p float64, detail string) *Error {
	return &Error{Kind: KindRootFinding, Op: op, Point: p, Detail: detail}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
