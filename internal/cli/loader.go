package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/procquery/internal/compiler"
)

// QueryDoc is a compiled query document.
type QueryDoc = compiler.QueryDoc

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQueryFile reads and compiles a CUE query document.
func LoadQueryFile(path string) (*QueryDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading query file: %v", err)}
	}
	return ParseQuery(data, path)
}

// ParseQuery compiles CUE source. filename is used in positions.
func ParseQuery(data []byte, filename string) (*QueryDoc, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	doc, err := compiler.CompileQuery(value)
	if err != nil {
		return nil, convertCompileError(err, filename)
	}
	return doc, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	var predErr *compiler.PredicateError
	if errors.As(err, &predErr) {
		return &LoadError{Code: ErrCodeInvalidPredicate, Message: predErr.Err.Error()}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Query document errors
	ErrCodeInvalidMode  = "E120" // Unknown mode
	ErrCodeInvalidWhere = "E121" // Malformed where entry
	ErrCodeInvalidValue = "E122" // Unsupported operand (e.g., float)

	// Query execution errors
	ErrCodeInvalidPredicate = "E130" // Predicate rejected at build time
	ErrCodeNonUnique        = "E131" // Single result matched several instances
	ErrCodeStorage          = "E132" // Database failure
	ErrCodeNoSuchInstance   = "E133" // Process instance id not in the database

	// Dataset errors
	ErrCodeInvalidDataset = "E140" // Dataset YAML rejected
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case compiler.FieldCUE:
		return ErrCodeBuildFailed
	case compiler.FieldMode:
		return ErrCodeInvalidMode
	case compiler.FieldWhere:
		return ErrCodeInvalidWhere
	case compiler.FieldValue:
		return ErrCodeInvalidValue
	case compiler.FieldPredicate:
		return ErrCodeInvalidPredicate
	default:
		return ErrCodeGeneric
	}
}
