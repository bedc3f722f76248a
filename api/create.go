package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts"
)

const missingPropertyPrefix = "Missing property in request body: "

var createOperation = operation{
	name:           "CreateContact",
	failureLog:     "Failed to add item to table",
	failureMessage: "Failed to add item to table, see log for details",
}

// CreateRequest is the expected request body of [Handler.CreateContact].
// Both fields are required; a JSON null counts as missing.
type CreateRequest struct {
	Name      *string `json:"name"`
	Telephone *string `json:"telephone"`
}

// CreateContact validates the request body, mints a new contact ID and writes
// the contact. It returns the stored record with status 201, or 400 naming
// the first missing property.
//
// A body that is not a JSON object with string fields is not a validation
// error: it fails like any other unexpected fault, with a 500.
func (h *Handler) CreateContact(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.serve(ctx, createOperation, req, func(ctx context.Context, logger logrus.FieldLogger) (result, error) {
		body, err := decodeCreateRequest(req)
		if err != nil {
			return result{}, err
		}

		return h.createContact(ctx, logger, body)
	}), nil
}

func (h *Handler) createContact(ctx context.Context, logger logrus.FieldLogger, body *CreateRequest) (result, error) {
	if body.Name == nil {
		return messageResult(http.StatusBadRequest, missingPropertyPrefix+"name"), nil
	}

	if body.Telephone == nil {
		return messageResult(http.StatusBadRequest, missingPropertyPrefix+"telephone"), nil
	}

	contact := contacts.NewContact(h.newID(), *body.Name, *body.Telephone)

	logger.
		WithField("contact_id", contact.ContactID).
		WithField("table_name", h.cfg.TableName).
		Debug("Writing contact")

	if err := h.store.PutContact(ctx, contact); err != nil {
		return result{}, err
	}

	return result{status: http.StatusCreated, body: contact}, nil
}

func decodeCreateRequest(req events.APIGatewayProxyRequest) (*CreateRequest, error) {
	data := []byte(req.Body)

	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 request body: %w", err)
		}
		data = decoded
	}

	var body *CreateRequest
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to parse request body: %w", err)
	}

	if body == nil {
		return nil, errors.New("request body is null")
	}

	return body, nil
}
