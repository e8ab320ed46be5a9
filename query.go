package pstack

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoEvaluator indicates no query engine could be resolved.
	ErrNoEvaluator = errors.New("pstack: evaluator not configured")
	// ErrNoMatch indicates no version satisfied the query expression.
	ErrNoMatch = errors.New("pstack: no version matches expression")
)

// Query evaluates expressions against the versions of a history. Expressions
// see the variables exposed by QueryContext.binding; boolean expressions can
// drive version searches across the whole history.
type Query[T any] struct {
	history History[T]
	cfg     queryConfig
}

// NewQuery wraps history for expression-based inspection. Without
// WithEvaluator the expr engine is used.
func NewQuery[T any](history History[T], opts ...QueryOption) *Query[T] {
	return &Query[T]{
		history: history,
		cfg:     applyQueryOptions(opts),
	}
}

// Evaluate executes expr against the content at version.
func (q *Query[T]) Evaluate(version int, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("pstack: expression must not be empty")
	}
	evaluator, err := q.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	ctx, err := q.contextAt(version)
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapQueryError(engine, expr, version, evalErr)
	q.queryLogger().LogQuery(QueryLogEvent{
		Engine:   engine,
		Expr:     expr,
		Version:  version,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Matches evaluates a boolean expr against the content at version.
func (q *Query[T]) Matches(version int, expr string) (bool, error) {
	value, err := q.Evaluate(version, expr)
	if err != nil {
		return false, err
	}
	matched, ok := value.(bool)
	if !ok {
		return false, wrapQueryError(evaluatorEngineName(q.cfg.evaluator), expr, version,
			fmt.Errorf("expression must return bool, got %T", value))
	}
	return matched, nil
}

// FindVersion returns the first version, ascending from 0, whose content
// satisfies the boolean expr. Fails with ErrNoMatch when no version does.
func (q *Query[T]) FindVersion(expr string) (int, error) {
	versions, err := q.scanVersions(expr, true)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoMatch, expr)
	}
	return versions[0], nil
}

// SelectVersions returns every version whose content satisfies the boolean
// expr, ascending. An empty result is not an error.
func (q *Query[T]) SelectVersions(expr string) ([]int, error) {
	return q.scanVersions(expr, false)
}

func (q *Query[T]) scanVersions(expr string, stopAtFirst bool) ([]int, error) {
	if expr == "" {
		return nil, fmt.Errorf("pstack: expression must not be empty")
	}
	evaluator, err := q.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	engine := evaluatorEngineName(evaluator)
	program, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapQueryError(engine, expr, 0, err)
	}

	var versions []int
	for v := 0; v <= q.history.Version(); v++ {
		ctx, err := q.contextAt(v)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		value, evalErr := program.Evaluate(ctx)
		duration := time.Since(start)
		evalErr = wrapQueryError(engine, expr, v, evalErr)
		q.queryLogger().LogQuery(QueryLogEvent{
			Engine:   engine,
			Expr:     expr,
			Version:  v,
			Duration: duration,
			Err:      evalErr,
		})
		if evalErr != nil {
			return nil, evalErr
		}
		matched, ok := value.(bool)
		if !ok {
			return nil, wrapQueryError(engine, expr, v, fmt.Errorf("expression must return bool, got %T", value))
		}
		if matched {
			versions = append(versions, v)
			if stopAtFirst {
				return versions, nil
			}
		}
	}
	return versions, nil
}

func (q *Query[T]) contextAt(version int) (QueryContext, error) {
	content, err := q.history.ReadVersion(version)
	if err != nil {
		return QueryContext{}, err
	}
	return QueryContext{
		Version: version,
		Latest:  q.history.Version(),
		Content: contentBinding(content),
	}.withDefaults(), nil
}

func (q *Query[T]) resolveEvaluator() (Evaluator, error) {
	if q.cfg.evaluator != nil {
		return q.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := q.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := q.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	q.cfg.evaluator = evaluator
	return evaluator, nil
}

func (q *Query[T]) queryLogger() QueryLogger {
	if q.cfg.logger != nil {
		return q.cfg.logger
	}
	return noopQueryLogger{}
}

func contentBinding[T any](content []T) []any {
	out := make([]any, len(content))
	for i, v := range content {
		out[i] = v
	}
	return out
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*pstack.exprEvaluator":
		return "expr"
	case "*pstack.celEvaluator":
		return "cel"
	case "*pstack.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
