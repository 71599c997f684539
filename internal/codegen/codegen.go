// Package codegen compiles strategy graphs into MetaTrader expert advisors.
//
// The generated program evaluates the graph once per closed bar, the same
// clock the backtest interpreter runs on: every numeric node becomes a series
// array indexed from the last closed bar backwards, every condition and logic
// node a boolean bound once per tick, and every action an order statement
// guarded by the conjunction of its boolean inputs.
package codegen

import (
	"regexp"
	"strings"

	"github.com/rxtech-lab/argo-strategy/internal/graph"
	"github.com/rxtech-lab/argo-strategy/internal/validator"
	"github.com/rxtech-lab/argo-strategy/pkg/errors"
)

// Dialect selects the target language.
type Dialect string

const (
	DialectMQL4 Dialect = "mql4"
	DialectMQL5 Dialect = "mql5"
)

// DefaultMagicNumber is used when Options leaves MagicNumber at zero.
const DefaultMagicNumber = 123456

// ParseDialect accepts mql4/mq4/mt4/a and mql5/mq5/mt5/b in any case.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mql4", "mq4", "mt4", "a":
		return DialectMQL4, nil
	case "mql5", "mq5", "mt5", "b":
		return DialectMQL5, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidDialect, "unknown dialect %q, expected mql4 or mql5", s)
	}
}

// Extension returns the source file extension of the dialect.
func (d Dialect) Extension() string {
	if d == DialectMQL5 {
		return ".mq5"
	}

	return ".mq4"
}

// Options configures one compilation.
type Options struct {
	Dialect      Dialect `yaml:"dialect" json:"dialect" validate:"required,oneof=mql4 mql5"`
	StrategyName string  `yaml:"strategyName" json:"strategyName"`
	MagicNumber  int     `yaml:"magicNumber" json:"magicNumber" validate:"gte=0"`
}

// Generator validates strategies and renders them in a dialect.
type Generator struct {
	validator *validator.Validator
}

func New() *Generator {
	return &Generator{validator: validator.New()}
}

// NewWithValidator uses v, typically one sharing the caller's indicator
// registry, to gate compilation.
func NewWithValidator(v *validator.Validator) *Generator {
	return &Generator{validator: v}
}

// Compile renders strategy with the default generator.
func Compile(strategy *graph.Strategy, opts Options) (string, error) {
	return New().Compile(strategy, opts)
}

// Compile refuses strategies with validation errors and fails on any node
// without a translation rule rather than dropping it.
func (g *Generator) Compile(strategy *graph.Strategy, opts Options) (string, error) {
	if strategy == nil {
		return "", errors.New(errors.ErrCodeInvalidParameter, "strategy is nil")
	}

	var e emitter

	switch opts.Dialect {
	case DialectMQL4:
		e = mql4{}
	case DialectMQL5:
		e = mql5{}
	default:
		return "", errors.Newf(errors.ErrCodeInvalidDialect, "unknown dialect %q", opts.Dialect)
	}

	if err := g.validator.Validate(strategy).Err(); err != nil {
		return "", err
	}

	if opts.StrategyName == "" {
		opts.StrategyName = strategy.Name
	}

	if opts.StrategyName == "" {
		opts.StrategyName = strategy.ID
	}

	if opts.MagicNumber == 0 {
		opts.MagicNumber = DefaultMagicNumber
	}

	p, err := lower(strategy, opts)
	if err != nil {
		return "", err
	}

	source, err := render(e, p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCodegenFailed, "failed to render source", err)
	}

	return source, nil
}

var requiredStructure = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#property\s+\w+`),
	regexp.MustCompile(`(?m)^input\s+\w+\s+\w+`),
	regexp.MustCompile(`\bint\s+OnInit\s*\(`),
	regexp.MustCompile(`\bvoid\s+OnDeinit\s*\(`),
	regexp.MustCompile(`\bvoid\s+OnTick\s*\(`),
}

// HasRequiredStructure reports whether source declares a property header,
// at least one input and the init, deinit and tick handlers.
func HasRequiredStructure(source string) bool {
	for _, re := range requiredStructure {
		if !re.MatchString(source) {
			return false
		}
	}

	return true
}
