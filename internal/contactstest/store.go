// Package contactstest provides an in-memory [contacts.Store] for tests.
package contactstest

import (
	"context"
	"sync"

	"github.com/slackmgr/contacts"
)

var _ contacts.Store = (*MemoryStore)(nil)

// MemoryStore keeps contacts in insertion order and counts calls. Set the
// error fields to make the matching method fail, or Panics to make
// ListContacts panic.
type MemoryStore struct {
	ListErr error
	GetErr  error
	PutErr  error
	Panics  bool

	mu       sync.Mutex
	order    []string
	contacts map[string]contacts.Contact
	calls    int
}

// NewMemoryStore returns a store seeded with cs.
func NewMemoryStore(cs ...contacts.Contact) *MemoryStore {
	s := &MemoryStore{contacts: make(map[string]contacts.Contact)}
	for _, c := range cs {
		s.order = append(s.order, c.ContactID)
		s.contacts[c.ContactID] = c
	}
	return s
}

func (s *MemoryStore) ListContacts(_ context.Context) ([]contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.Panics {
		panic("store exploded")
	}

	if s.ListErr != nil {
		return nil, s.ListErr
	}

	result := make([]contacts.Contact, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.contacts[id])
	}
	return result, nil
}

func (s *MemoryStore) GetContact(_ context.Context, contactID string) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.GetErr != nil {
		return nil, s.GetErr
	}

	c, ok := s.contacts[contactID]
	if !ok {
		return nil, nil //nolint:nilnil
	}
	return &c, nil
}

func (s *MemoryStore) PutContact(_ context.Context, contact contacts.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.PutErr != nil {
		return s.PutErr
	}

	if _, exists := s.contacts[contact.ContactID]; !exists {
		s.order = append(s.order, contact.ContactID)
	}
	s.contacts[contact.ContactID] = contact
	return nil
}

// CallCount returns the number of store calls made so far.
func (s *MemoryStore) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
