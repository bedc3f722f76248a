package contacts

import "context"

// Contact is a single directory entry. ContactID is minted by the system when
// the contact is created and never changes afterwards.
//
// Name and Telephone are pointers because a stored record may lack either
// attribute. Records written by this module always carry both.
type Contact struct {
	ContactID string  `json:"contactId"`
	Name      *string `json:"name,omitempty"`
	Telephone *string `json:"telephone,omitempty"`
}

// NewContact returns a complete contact.
func NewContact(contactID, name, telephone string) Contact {
	return Contact{
		ContactID: contactID,
		Name:      &name,
		Telephone: &telephone,
	}
}

// Complete reports whether both name and telephone are present.
func (c Contact) Complete() bool {
	return c.Name != nil && c.Telephone != nil
}

// Store is the persistence contract used by the request handlers. Every
// method performs a single logical store operation.
type Store interface {
	// ListContacts returns every contact in the table, in the order the
	// table returns them.
	ListContacts(ctx context.Context) ([]Contact, error)

	// GetContact returns the contact with the given ID. It returns (nil, nil)
	// when no such contact exists.
	GetContact(ctx context.Context, contactID string) (*Contact, error)

	// PutContact writes the contact, replacing any record with the same ID.
	PutContact(ctx context.Context, contact Contact) error
}
