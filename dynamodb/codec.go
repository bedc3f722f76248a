package dynamodb

import (
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/slackmgr/contacts"
)

// ErrMissingAttribute is returned when a required attribute is absent from an
// item or stream image.
var ErrMissingAttribute = errors.New("missing attribute")

// marshalContact converts a contact into a DynamoDB item. Absent optional
// fields are left out of the item.
func marshalContact(contact contacts.Contact) map[string]dynamodbtypes.AttributeValue {
	item := map[string]dynamodbtypes.AttributeValue{
		ContactIDAttr: &dynamodbtypes.AttributeValueMemberS{Value: contact.ContactID},
	}

	if contact.Name != nil {
		item[NameAttr] = &dynamodbtypes.AttributeValueMemberS{Value: *contact.Name}
	}

	if contact.Telephone != nil {
		item[TelephoneAttr] = &dynamodbtypes.AttributeValueMemberS{Value: *contact.Telephone}
	}

	return item
}

// unmarshalContact converts a DynamoDB item into a contact. The contactId
// attribute is required; name and telephone are optional but must be strings
// when present.
func unmarshalContact(item map[string]dynamodbtypes.AttributeValue) (contacts.Contact, error) {
	id, ok, err := stringAttr(item, ContactIDAttr)
	if err != nil {
		return contacts.Contact{}, err
	}

	if !ok {
		return contacts.Contact{}, fmt.Errorf("%w: %s", ErrMissingAttribute, ContactIDAttr)
	}

	contact := contacts.Contact{ContactID: id}

	if contact.Name, err = optionalStringAttr(item, NameAttr); err != nil {
		return contacts.Contact{}, err
	}

	if contact.Telephone, err = optionalStringAttr(item, TelephoneAttr); err != nil {
		return contacts.Contact{}, err
	}

	return contact, nil
}

func contactKey(contactID string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		ContactIDAttr: &dynamodbtypes.AttributeValueMemberS{Value: contactID},
	}
}

// stringAttr returns the string value of the named attribute. ok is false when
// the attribute is absent; an attribute of any other type is an error.
func stringAttr(item map[string]dynamodbtypes.AttributeValue, name string) (value string, ok bool, err error) {
	attr, found := item[name]
	if !found || attr == nil {
		return "", false, nil
	}

	s, isString := attr.(*dynamodbtypes.AttributeValueMemberS)
	if !isString {
		return "", false, fmt.Errorf("attribute %s has type %T, expected string", name, attr)
	}

	return s.Value, true, nil
}

func optionalStringAttr(item map[string]dynamodbtypes.AttributeValue, name string) (*string, error) {
	value, ok, err := stringAttr(item, name)
	if err != nil || !ok {
		return nil, err
	}

	return &value, nil
}

// ContactIDFromImage extracts the contactId from a DynamoDB Streams image.
// It returns an error if the image is nil or does not carry a string
// contactId.
func ContactIDFromImage(image map[string]events.DynamoDBAttributeValue) (string, error) {
	if image == nil {
		return "", errors.New("stream record has no image")
	}

	attr, ok := image[ContactIDAttr]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingAttribute, ContactIDAttr)
	}

	if attr.DataType() != events.DataTypeString {
		return "", fmt.Errorf("attribute %s has data type %d, expected string", ContactIDAttr, attr.DataType())
	}

	return attr.String(), nil
}
