// Package api implements the contact request handlers invoked through API
// Gateway proxy integration.
//
// Every handler returns exactly one response per invocation. Expected
// outcomes (missing configuration, invalid input, not found) are explicit
// results; any other failure, including a panic, is logged with its cause and
// mapped to a generic 500 whose message never carries internal detail.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts"
)

// MissingTableNameMessage is returned with a 500 when no table name is
// configured.
const MissingTableNameMessage = "Missing environment variable: " + contacts.TableNameEnv

// Option is a functional option for configuring a [Handler].
type Option func(*Handler)

// WithIDGenerator replaces the contact ID generator. The default is
// [uuid.NewString].
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		h.newID = fn
	}
}

// Handler serves the list, get and create operations. It is built once per
// process and is safe for concurrent use.
type Handler struct {
	cfg    contacts.Config
	store  contacts.Store
	logger logrus.FieldLogger
	newID  func() string
}

// New creates a Handler backed by the given store. The store is never called
// when cfg carries no table name.
func New(cfg contacts.Config, store contacts.Store, logger logrus.FieldLogger, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg,
		store:  store,
		logger: logger.WithField("component", "api"),
		newID:  uuid.NewString,
	}

	for _, o := range opts {
		o(h)
	}

	return h
}

// MessageBody is the JSON body of every error response that has one.
type MessageBody struct {
	Message string `json:"message"`
}

// result is the explicit outcome of an operation. A nil body produces an
// empty response body.
type result struct {
	status int
	body   any
}

func messageResult(status int, message string) result {
	return result{status: status, body: MessageBody{Message: message}}
}

// operation describes how a handler reports unexpected failures.
type operation struct {
	name           string
	failureLog     string
	failureMessage string
}

// serve runs fn and converts its outcome into a proxy response. Errors and
// panics become a 500 with op.failureMessage; the cause is only logged.
func (h *Handler) serve(ctx context.Context, op operation, req events.APIGatewayProxyRequest, fn func(context.Context, logrus.FieldLogger) (result, error)) (resp events.APIGatewayProxyResponse) {
	logger := h.logger.WithField("operation", op.name)

	logger.
		WithField("http_method", req.HTTPMethod).
		WithField("path", req.Path).
		WithField("request_id", req.RequestContext.RequestID).
		Debug("Received event")

	defer func() {
		if v := recover(); v != nil {
			logger.Errorf("%s: panic: %v", op.failureLog, v)
			resp = toResponse(logger, messageResult(http.StatusInternalServerError, op.failureMessage))
		}

		logger.WithField("status_code", resp.StatusCode).Debugf("Returning result: %s", resp.Body)
	}()

	if !h.cfg.HasTableName() {
		return toResponse(logger, messageResult(http.StatusInternalServerError, MissingTableNameMessage))
	}

	res, err := fn(ctx, logger)
	if err != nil {
		logger.Errorf("%s: %T %v", op.failureLog, err, err)
		return toResponse(logger, messageResult(http.StatusInternalServerError, op.failureMessage))
	}

	return toResponse(logger, res)
}

func toResponse(logger logrus.FieldLogger, res result) events.APIGatewayProxyResponse {
	if res.body == nil {
		return events.APIGatewayProxyResponse{StatusCode: res.status}
	}

	body, err := json.Marshal(res.body)
	if err != nil {
		logger.Errorf("Failed to marshal response body: %v", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       fmt.Sprintf(`{"message":%q}`, http.StatusText(http.StatusInternalServerError)),
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: res.status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
