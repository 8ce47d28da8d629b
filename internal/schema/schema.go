// Package schema embeds the subset of the PokeAPI GraphQL schema that the
// client queries and the mock server answers.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed pokeapi.graphql
var source string

var load = sync.OnceValues(func() (*ast.Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: "pokeapi.graphql", Input: source, BuiltIn: false})
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return s, nil
})

// Load parses the embedded schema once and returns the shared result.
func Load() (*ast.Schema, error) {
	return load()
}

// Validate checks query against the schema and returns the parsed document.
func Validate(query string) (*ast.QueryDocument, error) {
	s, err := Load()
	if err != nil {
		return nil, err
	}
	doc, errs := gqlparser.LoadQuery(s, query)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

// SDL returns the embedded schema text.
func SDL() string {
	return source
}
