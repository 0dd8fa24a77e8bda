// Package jsonfilter filters collections of JSON-like records with ad-hoc
// boolean expressions.
//
// An expression is a flat list of tokens:
//
//	jsonfilter.Expression{
//	    jsonfilter.Cond("age", jsonfilter.OpGt, 20),
//	    jsonfilter.AndToken(),
//	    jsonfilter.OpenToken(),
//	    jsonfilter.Cond("address", jsonfilter.OpContains, "Colorado"),
//	    jsonfilter.OrToken(),
//	    jsonfilter.Cond("contact.phone", jsonfilter.OpEq, nil),
//	    jsonfilter.CloseToken(),
//	}
//
// Conditions compare the value at a dotted key path with a literal using one
// of =, !=, <, <=, >, >=, cont, sw or ew. AND binds tighter than OR, brackets
// group, and two operands with no connector between them are joined with an
// implicit AND.
//
// Records may be decoded JSON (map[string]any, []any, float64, string, bool,
// nil), typed maps and slices, or structs addressed by their json tags.
// Filter returns the matching records themselves, in input order.
//
// Evaluation is fail-closed: a structurally malformed expression (unbalanced
// brackets, dangling connectors, unknown connectives) excludes the records it
// cannot decide instead of returning an error. An expression that cannot be
// compiled at all, because a literal is not a scalar, selects nothing and is
// logged through log/slog. Use Compile to get the error, and Validate to lint
// an expression before running it.
package jsonfilter
