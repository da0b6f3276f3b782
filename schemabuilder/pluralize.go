package schemabuilder

import (
	"github.com/gertd/go-pluralize"
)

// PluralizeFunc maps a singular noun to its plural form.
type PluralizeFunc func(singular string) string

var pluralizeClient = pluralize.NewClient()

// Pluralize returns the English plural of word, following the rules of the
// pluralize word lists ("widget" -> "widgets", "person" -> "people").
func Pluralize(word string) string {
	return pluralizeClient.Plural(word)
}
