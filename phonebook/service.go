// Package phonebook validates contacts and maps store outcomes to request
// outcomes. The same rules apply whichever [datastores.ContactsStore] backs
// the service.
package phonebook

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	ds "github.com/amritsagoo91/phonebook-demo/datastores"
)

// MinNameLength is the minimum number of characters in a contact name.
const MinNameLength = 3

// numberPattern accepts a 2 or 3 digit prefix followed by hyphen separated
// digit groups, e.g. 09-1234567, 040-123456 or 39-44-5323523.
var numberPattern = regexp.MustCompile(`^\d{2,3}(-\d+)+$`)

// Message of the conflict outcome, also used to redact logged request bodies.
const MsgNameNotUnique = "name must be unique"

type Service struct {
	store ds.ContactsStore
	now   func() time.Time
}

func NewService(store ds.ContactsStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Summary is the phonebook overview shown by the info page.
type Summary struct {
	Count int
	Time  time.Time
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Count: n, Time: s.now()}, nil
}

func (s *Service) List(ctx context.Context) ([]*ds.Contact, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id ds.ContactID) (*ds.Contact, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, name, number string) (*ds.Contact, error) {
	c, err := Validate(name, number)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Create(ctx, c); err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id ds.ContactID, name, number string) (*ds.Contact, error) {
	c, err := Validate(name, number)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, id, c)
	if err != nil {
		return nil, storeError(err)
	}
	return updated, nil
}

// Delete removes the contact if present. Unknown identifiers are not an error.
func (s *Service) Delete(ctx context.Context, id ds.ContactID) error {
	return s.store.Delete(ctx, id)
}

// Validate trims name and number and checks them against the contact rules.
// Failures are [KindBadRequest] errors.
func Validate(name, number string) (*ds.Contact, error) {
	name, number = strings.TrimSpace(name), strings.TrimSpace(number)
	switch {
	case name == "" || number == "":
		return nil, newError(KindBadRequest, "missing name or number", nil)
	case utf8.RuneCountInString(name) < MinNameLength:
		return nil, newError(KindBadRequest, fmt.Sprintf("name must be at least %d characters long", MinNameLength), nil)
	case !numberPattern.MatchString(number):
		return nil, newError(KindBadRequest, number+" is not a valid phone number, use a format like 09-1234567", nil)
	}
	return &ds.Contact{Name: name, Number: number}, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, ds.ErrObjectNotFound):
		return newError(KindNotFound, "contact not found", err)
	case errors.Is(err, ds.ErrMalformedID):
		return newError(KindMalformedID, "malformatted id", err)
	case errors.Is(err, ds.ErrDuplicateName):
		return newError(KindConflict, MsgNameNotUnique, err)
	default:
		return err
	}
}
