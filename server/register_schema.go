package server

import "go.appointy.com/catalog/schemabuilder"

// RegisterSchema registers every resource and the links between them.
func RegisterSchema(sb *schemabuilder.Schema) {
	RegisterObjects(sb)
	RegisterLinks(sb)
}
