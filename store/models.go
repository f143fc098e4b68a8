// Package store holds the in-memory fixture that stands in for a database.
// This file, `models.go`, defines the records kept in the store.
package store

// User represents a user of the todo application.
// The `yaml` tags map fixture keys; the field names double as GraphQL property
// names for graphql-go's default resolver (matched case-insensitively).
type User struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Age         int    `yaml:"age" json:"age"`
	Admin       bool   `yaml:"admin" json:"admin"`
}

// TodoKind names the concrete variant of a Todo.
type TodoKind string

const (
	// KindUnknown is reported for records carrying neither discriminator.
	KindUnknown TodoKind = ""
	// KindPonctual is a one-off todo tied to a calendar day.
	KindPonctual TodoKind = "PonctualTodo"
	// KindRecurrent is a repeating todo tied to a recurrence description.
	KindRecurrent TodoKind = "RecurrentTodo"
)

// Todo is a tagged union of the two todo variants.
// Exactly one of Date and Occurence is set; which one decides the variant.
type Todo struct {
	ID        string `yaml:"id" json:"id"`
	Title     string `yaml:"title" json:"title"`
	Content   string `yaml:"content" json:"content"`
	Date      string `yaml:"date,omitempty" json:"date,omitempty"`
	Occurence string `yaml:"occurence,omitempty" json:"occurence,omitempty"`
}

// Kind reports the variant of the todo from its discriminating field.
// A record with both fields set is ambiguous and reported as KindUnknown.
func (t Todo) Kind() TodoKind {
	switch {
	case t.Date != "" && t.Occurence == "":
		return KindPonctual
	case t.Occurence != "" && t.Date == "":
		return KindRecurrent
	default:
		return KindUnknown
	}
}
