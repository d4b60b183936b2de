package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/mark3labs/ramlgen/internal/example"
	"github.com/mark3labs/ramlgen/internal/generator"
	"github.com/mark3labs/ramlgen/internal/model"
	"github.com/mark3labs/ramlgen/internal/raml"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describeError turns the structured errors of the loader, the model
// builder, the example renderer and the file writer into usage errors with
// a readable message. Other errors are returned unchanged.
func describeError(err error, outDir string) error {
	if err == nil {
		return nil
	}
	var (
		se    *raml.SpecError
		pe    *raml.ParseError
		dup   *model.DuplicateTypeError
		unres *model.UnresolvedReferenceError
		cyc   *model.CyclicInheritanceError
		arity *model.GenericArityError
		ex    *example.ExampleMismatchError
	)
	switch {
	case errors.As(err, &se):
		msg := fmt.Sprintf("raml: %s", se.Message)
		if se.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
		}
		return newUsageError(fmt.Sprintf("%s\nCode: %s", msg, se.Code))
	case errors.As(err, &pe):
		msg := pe.Error()
		if pe.Location != "" {
			msg = fmt.Sprintf("%s\nLocation: %s", msg, pe.Location)
		}
		return newUsageError(msg)
	case errors.As(err, &dup), errors.As(err, &unres), errors.As(err, &cyc), errors.As(err, &arity):
		return newUsageError("model: " + err.Error())
	case errors.As(err, &ex):
		return newUsageError("example: " + err.Error())
	case errors.Is(err, generator.ErrTargetNotEmpty):
		msg := fmt.Sprintf("output error for %s: %v", outDir, err)
		if hints := errors.FlattenHints(err); hints != "" {
			msg += "\nHint: " + strings.ReplaceAll(hints, "\n--\n", "; ")
		}
		return newUsageError(msg)
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "not a directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %v\nHint: choose a different --out or use --force when appropriate.", outDir, err))
	}
	return err
}

// PrintError writes err to w. The first line is the red error header and any
// "Hint:" lines are shown in yellow.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	header := color.New(color.FgRed, color.Bold)
	hint := color.New(color.FgYellow)
	lines := strings.Split(strings.TrimRight(err.Error(), "\n"), "\n")
	header.Fprintf(w, "error: %s\n", lines[0])
	for _, l := range lines[1:] {
		if strings.HasPrefix(l, "Hint: ") {
			hint.Fprintln(w, l)
			continue
		}
		fmt.Fprintln(w, l)
	}
}
