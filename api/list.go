package api

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts"
)

var listOperation = operation{
	name:           "ListContacts",
	failureLog:     "Failed to get items from table",
	failureMessage: "Failed to retrieve items from table, see log for details",
}

// ListBody is the response body of [Handler.ListContacts].
type ListBody struct {
	Data []contacts.Contact `json:"data"`
}

// ListContacts returns every contact as {"data": [...]} with status 200. The
// order is whatever the table returns.
func (h *Handler) ListContacts(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.serve(ctx, listOperation, req, h.listContacts), nil
}

func (h *Handler) listContacts(ctx context.Context, logger logrus.FieldLogger) (result, error) {
	logger.WithField("table_name", h.cfg.TableName).Debug("Scanning table")

	list, err := h.store.ListContacts(ctx)
	if err != nil {
		return result{}, err
	}

	data := make([]contacts.Contact, 0, len(list))
	for _, c := range list {
		// Project exactly the three contact fields.
		data = append(data, contacts.Contact{
			ContactID: c.ContactID,
			Name:      c.Name,
			Telephone: c.Telephone,
		})
	}

	return result{status: http.StatusOK, body: ListBody{Data: data}}, nil
}
