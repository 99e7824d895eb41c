// Package search turns a free-text search value into conditions against the
// fields declared on a filter class.
//
// # Classes and registries
//
// A Class is declared once, before any request is served, from its own
// fields and the classes it extends:
//
//	base := search.NewClass("base", []search.Declaration{
//		search.Declare("id", fields.Integer("id", fields.AsDefault())),
//	})
//	books := search.NewClass("books", []search.Declaration{
//		search.Declare("title", fields.Contains("title")),
//		search.Declare("email", fields.Email("user.email", fields.AsDefault(), fields.WithAliases("@"))),
//	}, base)
//
// NewClass builds the class registry: every selector (declared names and
// aliases) mapped to a private copy of its field. Inherited selectors come
// first, then the own declarations; when two bases provide the same name the
// one listed first wins, and own declarations win over both.
//
// # Search syntax
//
// A search value is a comma separated list of terms. A term may name the
// field it targets with a leading ":selector:":
//
//	:title:kind of blue, miles.davis@jazz.com
//
// Selector words are joined with underscores, so ":first name:Miles" targets
// first_name. A term without a selector is tried against every default field.
//
// # Resolution
//
// Every selector must exist in the registry, otherwise the search fails with
// a *FieldNotFoundError. A term is paired with a field only when all of the
// field's validators accept it; rejected pairs are dropped without error.
// The resulting conditions are unique and keep the order they were produced
// in. A search that yields no conditions leaves the collection unfiltered.
//
// Conditions are combined with OR by the Store, which also removes duplicate
// rows.
package search
