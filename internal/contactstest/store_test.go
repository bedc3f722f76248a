package contactstest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/slackmgr/contacts"
	"github.com/slackmgr/contacts/internal/contactstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_KeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	s := contactstest.NewMemoryStore(contacts.NewContact("b", "Bo", "1"))

	require.NoError(t, s.PutContact(context.Background(), contacts.NewContact("a", "Al", "2")))
	require.NoError(t, s.PutContact(context.Background(), contacts.NewContact("b", "Bea", "3")))

	list, err := s.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ContactID)
	assert.Equal(t, "Bea", *list[0].Name)
	assert.Equal(t, "a", list[1].ContactID)
	assert.Equal(t, 3, s.CallCount())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()
	s := contactstest.NewMemoryStore()

	c, err := s.GetContact(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestMemoryStore_InjectedErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	s := contactstest.NewMemoryStore()
	s.ListErr, s.GetErr, s.PutErr = boom, boom, boom

	_, err := s.ListContacts(context.Background())
	require.ErrorIs(t, err, boom)

	_, err = s.GetContact(context.Background(), "x")
	require.ErrorIs(t, err, boom)

	require.ErrorIs(t, s.PutContact(context.Background(), contacts.NewContact("x", "X", "0")), boom)
}
