// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package filter drops catalog entries matching configured CEL exclusion
// rules. Rules are compiled once at construction and evaluated against each
// manifest before the catalog is written.
package filter

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/logger"
)

const (
	// maxExpressionLength bounds rule source length.
	maxExpressionLength = 10000

	// costLimit bounds the runtime cost of a single rule evaluation.
	costLimit = 1000000
)

// ErrInvalidRule is returned when an exclusion rule fails to compile or does
// not evaluate to a boolean.
var ErrInvalidRule = errors.New("invalid exclusion rule")

// Excluder evaluates exclusion rules against catalog entries. It is safe for
// concurrent use.
type Excluder struct {
	rules []compiledRule
}

type compiledRule struct {
	source  string
	program cel.Program
}

// manifestEnv declares the variables exclusion rules may reference.
func manifestEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("internal_name", cel.StringType),
		cel.Variable("channel", cel.StringType),
		cel.Variable("provenance", cel.StringType),
		cel.Variable("author", cel.StringType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("assembly_version", cel.StringType),
		cel.Variable("api_level", cel.IntType),
	)
}

// NewExcluder compiles the given rule expressions. Every rule must be a
// boolean expression over the manifest variables; the first invalid rule
// aborts construction so a bad configuration never silently passes entries
// through.
func NewExcluder(expressions []string) (*Excluder, error) {
	if len(expressions) == 0 {
		return &Excluder{}, nil
	}

	env, err := manifestEnv()
	if err != nil {
		return nil, fmt.Errorf("creating rule environment: %w", err)
	}

	rules := make([]compiledRule, 0, len(expressions))
	for _, expr := range expressions {
		if len(expr) > maxExpressionLength {
			return nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
				ErrInvalidRule, len(expr), maxExpressionLength)
		}

		ast, issues := env.Compile(expr)
		if issues.Err() != nil {
			return nil, fmt.Errorf("%w: compiling %q: %w", ErrInvalidRule, expr, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("%w: %q evaluates to %s, want bool",
				ErrInvalidRule, expr, ast.OutputType())
		}

		program, err := env.Program(ast, cel.CostLimit(costLimit))
		if err != nil {
			return nil, fmt.Errorf("%w: building program for %q: %w", ErrInvalidRule, expr, err)
		}
		rules = append(rules, compiledRule{source: expr, program: program})
	}
	return &Excluder{rules: rules}, nil
}

// Apply returns the entries that match no exclusion rule, preserving order.
// Dropped entries are logged with the rule that matched them.
func (e *Excluder) Apply(entries []*catalog.CanonicalManifest) []*catalog.CanonicalManifest {
	if len(e.rules) == 0 {
		return entries
	}

	kept := make([]*catalog.CanonicalManifest, 0, len(entries))
	for _, entry := range entries {
		if rule, matched := e.match(entry); matched {
			logger.Infow("entry excluded by rule",
				"name", entry.InternalName, "channel", entry.Channel, "rule", rule)
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

// match reports whether any rule matches the entry, and which. Evaluation
// errors count as no match so a misbehaving rule cannot empty the catalog.
func (e *Excluder) match(entry *catalog.CanonicalManifest) (string, bool) {
	vars := activation(entry)
	for _, rule := range e.rules {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			logger.Warnw("exclusion rule evaluation failed",
				"rule", rule.source, "name", entry.InternalName, "error", err)
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			return rule.source, true
		}
	}
	return "", false
}

func activation(entry *catalog.CanonicalManifest) map[string]any {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"name":             entry.Name,
		"internal_name":    entry.InternalName,
		"channel":          string(entry.Channel),
		"provenance":       string(entry.Provenance),
		"author":           entry.Author,
		"tags":             tags,
		"assembly_version": entry.AssemblyVersion,
		"api_level":        entry.DalamudAPILevel,
	}
}
