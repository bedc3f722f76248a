package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// ContactIDParam is the path parameter carrying the contact ID.
const ContactIDParam = "id"

var getOperation = operation{
	name:           "GetContact",
	failureLog:     "Failed to get item from table",
	failureMessage: "Failed to retrieve contact from table, see log for details",
}

var errMissingPathParameter = errors.New("missing path parameter: " + ContactIDParam)

// GetContact returns the contact named by the id path parameter with status
// 200, or 404 with an empty body if it does not exist. Attributes missing from
// the stored record are omitted from the body.
func (h *Handler) GetContact(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.serve(ctx, getOperation, req, func(ctx context.Context, logger logrus.FieldLogger) (result, error) {
		contactID, ok := req.PathParameters[ContactIDParam]
		if !ok {
			return result{}, errMissingPathParameter
		}

		return h.getContact(ctx, logger.WithField("contact_id", contactID), contactID)
	}), nil
}

func (h *Handler) getContact(ctx context.Context, logger logrus.FieldLogger, contactID string) (result, error) {
	logger.Infof("Retrieving details for contact %s...", contactID)

	contact, err := h.store.GetContact(ctx, contactID)
	if err != nil {
		return result{}, err
	}

	if contact == nil {
		return result{status: http.StatusNotFound}, nil
	}

	// The requested ID is authoritative for the response.
	contact.ContactID = contactID

	return result{status: http.StatusOK, body: contact}, nil
}
