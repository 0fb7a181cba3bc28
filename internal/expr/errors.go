package expr

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// EvalError reports a failure while evaluating an expression.
// Err holds the underlying cause when there is one (a variable getter or
// function error, or an *ir.CompareError).
type EvalError struct {
	Expr    string
	Message string
	Err     error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("evaluate %s: %s: %v", e.Expr, e.Message, e.Err)
	}
	return fmt.Sprintf("evaluate %s: %s", e.Expr, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// ParseError reports invalid predicate source.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%d:%d: %s", e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

func evalErrorf(e Expr, format string, args ...any) *EvalError {
	return &EvalError{Expr: String(e), Message: fmt.Sprintf(format, args...)}
}

func unreachable(e Expr) string {
	return fmt.Sprintf("expr: unreachable node type %T", e)
}
