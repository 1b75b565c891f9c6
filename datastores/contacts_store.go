package datastores

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

type (
	ContactID = string
	Contact   struct {
		ID     ContactID `json:"id"`
		Name   string    `json:"name"`
		Number string    `json:"number"`
	}
)

func (c *Contact) clone() *Contact {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

// ContactsStore persists contacts. Implementations enforce case-insensitive
// name uniqueness and assign identifiers on Create.
type ContactsStore interface {
	List(context.Context) ([]*Contact, error)
	Get(context.Context, ContactID) (*Contact, error)
	Create(context.Context, *Contact) (ContactID, error)
	Update(context.Context, ContactID, *Contact) (*Contact, error)
	Delete(context.Context, ContactID) error
	Count(context.Context) (int, error)
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrDuplicateName  = errors.New("store: duplicate name")
	ErrMalformedID    = errors.New("store: malformed id")
)

// nameKey returns the key under which a name is unique.
func nameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
