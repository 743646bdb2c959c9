package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/emrzvv/rcg/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess   = 0
	ExitFailure   = 1 // всё, что не попало в категории ниже
	ExitDomain    = 2 // неверные параметры, флаги или конфиг
	ExitNumerical = 3 // интегрирование, поиск корня, огибающая
	ExitExhausted = 4 // исчерпан лимит предложений
)

// ExitError carries the exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError picks the exit code from the kind of err.
func WrapExitError(message string, err error) *ExitError {
	return &ExitError{Code: codeFor(err), Message: message, Err: err}
}

func codeFor(err error) int {
	switch model.KindOf(err) {
	case model.KindDomain:
		return ExitDomain
	case model.KindConvergence, model.KindRootFinding, model.KindEnvelope:
		return ExitNumerical
	case model.KindSamplingExhausted:
		return ExitExhausted
	}
	return ExitFailure
}

// GetExitCode extracts the exit code from an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Table is the text rendering of a result.
type Table struct {
	Header []string
	Rows   [][]any
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

var printer = message.NewPrinter(language.English)

// Success writes data as JSON, or table as aligned text.
func (f *OutputFormatter) Success(data any, table Table) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	for i, h := range table.Header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	if len(table.Header) > 0 {
		fmt.Fprintln(tw)
	}
	for _, row := range table.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatCell(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (f *OutputFormatter) Error(err error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: err.Error()})
	}
	_, werr := fmt.Fprintf(f.Writer, "Error: %v\n", err)
	return werr
}

// formatCell groups integer digits and prints floats with 10 significant digits.
func formatCell(v any) string {
	switch x := v.(type) {
	case int:
		return printer.Sprintf("%d", x)
	case float64:
		return printer.Sprintf("%.10g", x)
	default:
		return fmt.Sprint(x)
	}
}
