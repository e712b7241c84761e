// Package policy evaluates configurable approval rules for time entries.
package policy

import (
	"context"
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
)

// ErrEmptyExpression is returned when no rule text is supplied.
var ErrEmptyExpression = errors.New("policy expression must not be empty")

type entryEnv struct {
	ID        uint64 `expr:"id"`
	Worker    string `expr:"worker"`
	TaskRef   string `expr:"task_ref"`
	StartTime uint64 `expr:"start_time"`
	EndTime   uint64 `expr:"end_time"`
	Hours     uint64 `expr:"hours"`
}

type approvalEnv struct {
	Caller string   `expr:"caller"`
	Entry  entryEnv `expr:"entry"`
}

// ExprPolicy is a timeentry.ApprovalPolicy backed by a compiled boolean
// expression, for example `caller != entry.worker && entry.hours <= 12`.
type ExprPolicy struct {
	expression string
	program    *exprvm.Program
}

var _ timeentry.ApprovalPolicy = (*ExprPolicy)(nil)

// NewExprPolicy compiles expression. Compilation fails for unknown
// identifiers and for expressions that do not yield a bool.
func NewExprPolicy(expression string) (*ExprPolicy, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(approvalEnv{}),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compiling approval policy %q: %w", expression, err)
	}
	return &ExprPolicy{expression: expression, program: program}, nil
}

// Expression returns the source rule.
func (p *ExprPolicy) Expression() string {
	return p.expression
}

// AllowApproval runs the rule against the entry and caller.
func (p *ExprPolicy) AllowApproval(_ context.Context, entry *timeentry.Entry, caller access.Principal) error {
	env := approvalEnv{
		Caller: string(caller),
		Entry: entryEnv{
			ID:        entry.EntryID,
			Worker:    string(entry.Worker),
			TaskRef:   entry.TaskRef,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			Hours:     entry.Hours,
		},
	}
	result, err := exprlang.Run(p.program, env)
	if err != nil {
		return fmt.Errorf("evaluating approval policy: %w", err)
	}
	allowed, ok := result.(bool)
	if !ok {
		return fmt.Errorf("evaluating approval policy: result %T is not a bool", result)
	}
	if !allowed {
		return fmt.Errorf("%w: approval policy rejected %q for entry %d", access.ErrUnauthorized, caller, entry.EntryID)
	}
	return nil
}
