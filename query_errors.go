package pstack

import (
	"errors"
	"fmt"
	"strings"
)

// QueryError captures engine metadata alongside the originating error.
type QueryError struct {
	Engine  string
	Expr    string
	Version int
	Err     error
}

func (e *QueryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("pstack: %s query %s version=%d: %v", e.Engine, describeExpression(e.Expr), e.Version, e.Err)
}

func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "pstack:") {
		return err
	}
	return fmt.Errorf("pstack: %s engine: %w", engine, err)
}

func wrapQueryError(engine, expr string, version int, err error) error {
	if err == nil {
		return nil
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		if queryErr.Engine == "" {
			queryErr.Engine = engine
		}
		if queryErr.Expr == "" {
			queryErr.Expr = expr
		}
		return queryErr
	}

	return &QueryError{
		Engine:  engine,
		Expr:    expr,
		Version: version,
		Err:     err,
	}
}
