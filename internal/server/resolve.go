package server

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// execute resolves the root fields of one query operation against the
// catalog and projects the rows through each field's selection set.
func (s *Server) execute(doc *ast.QueryDocument, operationName string, vars map[string]any) (map[string]any, gqlerror.List) {
	op := doc.Operations.ForName(operationName)
	if op == nil {
		return nil, gqlerror.List{gqlerror.Errorf("operation %q not found", operationName)}
	}
	if op.Operation != ast.Query {
		return nil, gqlerror.List{gqlerror.Errorf("operation type %s is not supported", op.Operation)}
	}

	data := make(map[string]any)
	var errs gqlerror.List
	for _, f := range collectFields(op.SelectionSet, vars) {
		path := ast.Path{ast.PathName(f.Alias)}
		switch f.Name {
		case "__typename":
			data[f.Alias] = "query_root"

		case "pokemon_v2_pokemon":
			limit, hasLimit, err := intArg(f, "limit", vars)
			if err != nil {
				errs = append(errs, gqlerror.ErrorPathf(path, "%s", err))
				data[f.Alias] = nil
				continue
			}
			if !hasLimit {
				limit = -1
			}
			offset, _, err := intArg(f, "offset", vars)
			if err != nil {
				errs = append(errs, gqlerror.ErrorPathf(path, "%s", err))
				data[f.Alias] = nil
				continue
			}
			rows := s.catalog.Page(limit, offset)
			list := make([]any, 0, len(rows))
			for _, row := range rows {
				list = append(list, row)
			}
			data[f.Alias] = project(list, f.SelectionSet, vars)

		case "pokemon_v2_pokemon_by_pk":
			id, _, err := intArg(f, "id", vars)
			if err != nil {
				errs = append(errs, gqlerror.ErrorPathf(path, "%s", err))
				data[f.Alias] = nil
				continue
			}
			if row := s.catalog.ByID(id); row != nil {
				data[f.Alias] = project(row, f.SelectionSet, vars)
			} else {
				data[f.Alias] = nil
			}

		default:
			errs = append(errs, gqlerror.ErrorPathf(path, "field %s is not served by the mock", f.Name))
			data[f.Alias] = nil
		}
	}
	return data, errs
}

// project copies the selected fields of v, renamed to their aliases.
func project(v any, set ast.SelectionSet, vars map[string]any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any)
		for _, f := range collectFields(set, vars) {
			if f.Name == "__typename" {
				if f.ObjectDefinition != nil {
					out[f.Alias] = f.ObjectDefinition.Name
				}
				continue
			}
			child := v[f.Name]
			if len(f.SelectionSet) > 0 {
				out[f.Alias] = project(child, f.SelectionSet, vars)
			} else {
				out[f.Alias] = child
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, project(item, set, vars))
		}
		return out
	default:
		return v
	}
}

// collectFields flattens fragments and drops fields excluded by @skip or
// @include.
func collectFields(set ast.SelectionSet, vars map[string]any) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range set {
		switch sel := sel.(type) {
		case *ast.Field:
			if included(sel.Directives, vars) {
				fields = append(fields, sel)
			}
		case *ast.InlineFragment:
			if included(sel.Directives, vars) {
				fields = append(fields, collectFields(sel.SelectionSet, vars)...)
			}
		case *ast.FragmentSpread:
			if sel.Definition != nil && included(sel.Directives, vars) {
				fields = append(fields, collectFields(sel.Definition.SelectionSet, vars)...)
			}
		}
	}
	return fields
}

func included(directives ast.DirectiveList, vars map[string]any) bool {
	if d := directives.ForName("skip"); d != nil && boolArg(d.Arguments, vars) {
		return false
	}
	if d := directives.ForName("include"); d != nil && !boolArg(d.Arguments, vars) {
		return false
	}
	return true
}

func boolArg(args ast.ArgumentList, vars map[string]any) bool {
	arg := args.ForName("if")
	if arg == nil {
		return false
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// intArg reads an Int argument from a literal or a variable. JSON
// variables arrive as float64.
func intArg(f *ast.Field, name string, vars map[string]any) (int, bool, error) {
	arg := f.Arguments.ForName(name)
	if arg == nil {
		return 0, false, nil
	}
	v, err := arg.Value.Value(vars)
	if err != nil {
		return 0, false, fmt.Errorf("argument %s: %w", name, err)
	}
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return int(n), true, nil
	case int:
		return n, true, nil
	case float64:
		if n != float64(int(n)) {
			return 0, false, fmt.Errorf("argument %s: %v is not an integer", name, n)
		}
		return int(n), true, nil
	default:
		return 0, false, fmt.Errorf("argument %s: unexpected %T", name, v)
	}
}
