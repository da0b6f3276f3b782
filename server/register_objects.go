package server

import "go.appointy.com/catalog/schemabuilder"

// RegisterObjects registers the resources exposed on Query. The order decides
// which resource wins when two of them produce the same field name.
func RegisterObjects(sb *schemabuilder.Schema) {
	sb.Resource("Widget", Widget{}, "A thing for sale in the widget catalog.")
	sb.Resource("Owner", Owner{}, "The person stocking widgets.")
	sb.Resource("Book", Book{}, "A book of the book catalog.")
	sb.Resource("Author", Author{}, "The author of books.")
}

// RegisterLinks adds the fields following foreign keys between resources.
// Resources are looked up by name, so RegisterObjects must run first.
func RegisterLinks(sb *schemabuilder.Schema) {
	widget := sb.Resource("Widget", Widget{})
	book := sb.Resource("Book", Book{})

	widget.Link("owner", sb.Resource("Owner", Owner{}), "ownerId", "The owner of the widget.")
	book.Link("author", sb.Resource("Author", Author{}), "authorId", "The author of the book.")
}
