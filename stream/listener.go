// Package stream implements the DynamoDB Streams listener that logs contact
// creations, updates and deletions.
package stream

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"github.com/slackmgr/contacts/dynamodb"
)

// EventSource is the event source of records delivered by DynamoDB Streams.
const EventSource = "aws:dynamodb"

// Ack is the empty acknowledgment returned for a successfully processed
// batch. It marshals to {}.
type Ack struct{}

// Listener logs one line per contact change. It never writes to the table.
type Listener struct {
	logger logrus.FieldLogger
}

// NewListener creates a Listener that logs through logger.
func NewListener(logger logrus.FieldLogger) *Listener {
	return &Listener{
		logger: logger.WithField("component", "stream"),
	}
}

// Handle processes the records of a stream batch in order. Records from any
// source other than DynamoDB are logged as a warning and skipped.
//
// A record without an event source or event name, or one that lacks the
// image or contactId its event name requires, aborts the batch: the error is returned so that the Lambda runtime redelivers the
// whole batch.
func (l *Listener) Handle(_ context.Context, event events.DynamoDBEvent) (Ack, error) {
	l.logger.WithField("record_count", len(event.Records)).Debug("Received event")

	for i, record := range event.Records {
		if err := l.handleRecord(record); err != nil {
			l.logger.
				WithField("record_index", i).
				WithField("event_id", record.EventID).
				Errorf("Failed to process event(s): %v", err)
			return Ack{}, err
		}
	}

	return Ack{}, nil
}

func (l *Listener) handleRecord(record events.DynamoDBEventRecord) error {
	if record.EventSource == "" {
		return fmt.Errorf("stream record %s has no eventSource", record.EventID)
	}

	if record.EventName == "" {
		return fmt.Errorf("stream record %s has no eventName", record.EventID)
	}

	if record.EventSource != EventSource {
		l.logger.Warnf("Received event from unknown source: %s", record.EventSource)
		return nil
	}

	switch events.DynamoDBOperationType(record.EventName) {
	case events.DynamoDBOperationTypeInsert:
		return l.logChange(record.Change.NewImage, record.EventName, "created")
	case events.DynamoDBOperationTypeModify:
		return l.logChange(record.Change.NewImage, record.EventName, "updated")
	case events.DynamoDBOperationTypeRemove:
		return l.logChange(record.Change.OldImage, record.EventName, "deleted")
	default:
		l.logger.WithField("event_name", record.EventName).Debug("Ignoring stream record with unknown event name")
		return nil
	}
}

func (l *Listener) logChange(image map[string]events.DynamoDBAttributeValue, eventName, verb string) error {
	contactID, err := dynamodb.ContactIDFromImage(image)
	if err != nil {
		return fmt.Errorf("invalid %s record: %w", eventName, err)
	}

	l.logger.WithField("contact_id", contactID).Infof("Contact %s %s", contactID, verb)

	return nil
}
