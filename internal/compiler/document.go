// Package compiler turns CUE document specs into the schema types and
// ultimately into a dependency graph.
//
// A document spec declares tables, columns and - for formula columns -
// the columns the formula reads:
//
//	table: Orders: {
//		column: price: {type: "int"}
//		column: total: {
//			type:    "int"
//			formula: true
//			reads: [{table: "Orders", column: "price", relation: "identity"}]
//		}
//	}
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/rowgraph/rowgraph/internal/schema"
)

// CompileDocument parses a CUE value holding table declarations into a
// DocumentSpec. Uses the CUE SDK's Go API directly (not a CLI
// subprocess). The value is the document root, i.e. the struct whose
// "table" field holds the tables.
func CompileDocument(v cue.Value) (*schema.DocumentSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &schema.DocumentSpec{}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		table, err := parseTable(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Tables = append(spec.Tables, *table)
	}

	if len(spec.Tables) == 0 {
		return nil, &CompileError{
			Field:   "table",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// parseTable extracts one table and its columns.
func parseTable(name string, v cue.Value) (*schema.TableSpec, error) {
	table := &schema.TableSpec{Name: name}

	colsVal := v.LookupPath(cue.ParsePath("column"))
	if !colsVal.Exists() {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.column", name),
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		col, err := parseColumn(name, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, *col)
	}

	if len(table.Columns) == 0 {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.column", name),
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}

	return table, nil
}

// parseColumn extracts one column declaration.
func parseColumn(tableName, name string, v cue.Value) (*schema.ColumnSpec, error) {
	col := &schema.ColumnSpec{Name: name}
	field := func(sub string) string {
		return fmt.Sprintf("table.%s.column.%s.%s", tableName, name, sub)
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if typeVal.Exists() {
		typ, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		col.Type = typ
	}

	formulaVal := v.LookupPath(cue.ParsePath("formula"))
	if formulaVal.Exists() {
		formula, err := formulaVal.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		col.Formula = formula
	}

	readsVal := v.LookupPath(cue.ParsePath("reads"))
	if readsVal.Exists() {
		readsIter, err := readsVal.List()
		if err != nil {
			return nil, &CompileError{
				Field:   field("reads"),
				Message: "reads must be a list",
				Pos:     readsVal.Pos(),
			}
		}
		for readsIter.Next() {
			read, err := parseRead(field("reads"), readsIter.Value())
			if err != nil {
				return nil, err
			}
			col.Reads = append(col.Reads, *read)
		}
	}

	return col, nil
}

// parseRead extracts one read declaration {table, column, relation}.
func parseRead(field string, v cue.Value) (*schema.ReadSpec, error) {
	read := &schema.ReadSpec{}

	for _, key := range []string{"table", "column", "relation"} {
		val := v.LookupPath(cue.ParsePath(key))
		if !val.Exists() {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("%s is required", key),
				Pos:     v.Pos(),
			}
		}
		s, err := val.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		switch key {
		case "table":
			read.Table = s
		case "column":
			read.Column = s
		case "relation":
			read.Relation = s
		}
	}

	return read, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
