package datastores

import (
	"context"
	"slices"
	"strconv"
	"sync"
)

// ContactsInmem implements [ContactsStore].
//
// Identifiers are decimal strings taken from a counter: they start at "1",
// increase with every insert and are never reused after a delete.
type ContactsInmem struct {
	mu       sync.Mutex
	seq      uint64
	index    map[ContactID]int
	names    map[string]ContactID
	contacts []*Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

// NewContactsInmem returns a store holding cs in order. Each seed contact gets
// a fresh identifier; seeds whose name is already taken are skipped.
func NewContactsInmem(cs ...*Contact) *ContactsInmem {
	s := &ContactsInmem{
		index:    make(map[ContactID]int, len(cs)),
		names:    make(map[string]ContactID, len(cs)),
		contacts: make([]*Contact, 0, len(cs)),
	}
	for _, c := range cs {
		_, _ = s.create(c)
	}
	return s
}

func (s *ContactsInmem) Create(_ context.Context, c *Contact) (ContactID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(c)
}

func (s *ContactsInmem) create(c *Contact) (ContactID, error) {
	key := nameKey(c.Name)
	if _, taken := s.names[key]; taken {
		return "", ErrDuplicateName
	}
	s.seq++
	c.ID = strconv.FormatUint(s.seq, 10)
	s.index[c.ID] = len(s.contacts)
	s.names[key] = c.ID
	s.contacts = append(s.contacts, c.clone())
	return c.ID, nil
}

func (s *ContactsInmem) List(_ context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, c.clone())
	}
	return contacts, nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return s.contacts[index].clone(), nil
}

func (s *ContactsInmem) Update(_ context.Context, id ContactID, c *Contact) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	current := s.contacts[index]
	oldKey, newKey := nameKey(current.Name), nameKey(c.Name)
	if owner, taken := s.names[newKey]; taken && owner != id {
		return nil, ErrDuplicateName
	}
	delete(s.names, oldKey)
	s.names[newKey] = id
	updated := &Contact{ID: id, Name: c.Name, Number: c.Number}
	s.contacts[index] = updated
	return updated.clone(), nil
}

func (s *ContactsInmem) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.index[id]
	if !ok {
		return nil
	}
	delete(s.index, id)
	delete(s.names, nameKey(s.contacts[index].Name))
	s.contacts = slices.Delete(s.contacts, index, index+1)
	for i := index; i < len(s.contacts); i++ {
		s.index[s.contacts[i].ID] = i
	}
	return nil
}

func (s *ContactsInmem) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contacts), nil
}
