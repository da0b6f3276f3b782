package server

import "go.appointy.com/catalog/schemabuilder"

// Widget is an item of the widget catalog.
type Widget struct {
	ID          schemabuilder.ID `graphql:"id,nonnull,description=Widget identifier"`
	Name        string           `graphql:"name"`
	Description string           `graphql:"description"`
	Color       string           `graphql:"color"`
	Size        string           `graphql:"size,description=One of tiny/small/medium/large/huge"`
	Quantity    int              `graphql:"quantity"`
	Price       float64          `graphql:"price"`
	OwnerID     string           `graphql:"ownerId"`
}

// Owner holds the contact details of whoever stocks widgets.
type Owner struct {
	ID        schemabuilder.ID `graphql:"id,nonnull"`
	FirstName string           `graphql:"firstName"`
	LastName  string           `graphql:"lastName"`
	Email     string           `graphql:"email"`
	Phone     string           `graphql:"phone"`
}

// Book is a title of the book catalog.
type Book struct {
	ID       schemabuilder.ID `graphql:"id,nonnull"`
	Title    string           `graphql:"title"`
	ISBN     string           `graphql:"isbn"`
	Category string           `graphql:"category"`
	Price    float64          `graphql:"price"`
	Quantity int              `graphql:"quantity"`
	AuthorID string           `graphql:"authorId"`
}

// Author wrote one or more books of the catalog.
type Author struct {
	ID          schemabuilder.ID `graphql:"id,nonnull"`
	FirstName   string           `graphql:"firstName"`
	LastName    string           `graphql:"lastName"`
	PhoneNumber string           `graphql:"phoneNumber"`
}
