package pstack

import "time"

// QueryContext carries the inputs exposed to a query expression: one
// materialized version of a history plus caller-supplied arguments.
type QueryContext struct {
	Version  int
	Latest   int
	Content  []any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx QueryContext) withDefaultNow() QueryContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx QueryContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx QueryContext) withDefaultMaps() QueryContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx QueryContext) withDefaults() QueryContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

// binding exposes the context as the flat variable set every engine shares:
// version, latest, size, content, top, now, args, metadata. top is nil when
// the content is empty.
func (ctx QueryContext) binding() map[string]any {
	binding := map[string]any{
		"version":  ctx.Version,
		"latest":   ctx.Latest,
		"size":     len(ctx.Content),
		"content":  ctx.Content,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	if len(ctx.Content) > 0 {
		binding["top"] = ctx.Content[len(ctx.Content)-1]
	} else {
		binding["top"] = nil
	}
	return binding
}

// Evaluator executes query expressions against a version context.
type Evaluator interface {
	Evaluate(ctx QueryContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledQuery, error)
}

// CompiledQuery represents a reusable expression program.
type CompiledQuery interface {
	Evaluate(ctx QueryContext) (any, error)
}

// CompileOption configures engine compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// QueryOption configures a Query wrapper.
type QueryOption func(*queryConfig)

type queryConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       QueryLogger
}

func applyQueryOptions(opts []QueryOption) queryConfig {
	cfg := queryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures an engine on the Query wrapper.
func WithEvaluator(e Evaluator) QueryOption {
	return func(cfg *queryConfig) {
		cfg.evaluator = e
	}
}
