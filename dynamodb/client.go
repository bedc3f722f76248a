//nolint:nilnil
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/slackmgr/contacts"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// ContactIDAttr is the partition key attribute name.
	ContactIDAttr = "contactId"

	// NameAttr is the attribute name holding the contact name.
	NameAttr = "name"

	// TelephoneAttr is the attribute name holding the contact telephone number.
	TelephoneAttr = "telephone"

	// batchWriteLimit is the maximum number of requests in a single
	// BatchWriteItem call.
	batchWriteLimit = 25

	// maxConcurrentBatchWrites bounds the BatchWriteItem calls in flight.
	maxConcurrentBatchWrites = 3

	// maxBackoff is the maximum backoff duration for retry loops.
	maxBackoff = 2 * time.Second
)

var _ contacts.Store = (*Client)(nil)

// Client is a DynamoDB-backed implementation of the [contacts.Store]
// interface.
//
// Use [New] to create a Client and [Client.Connect] to initialize the
// underlying DynamoDB connection. [Client.Init] optionally validates the
// table schema.
type Client struct {
	client    API
	tableName string
	awsCfg    *aws.Config
	opts      *Options
}

// New creates a new Client configured with the given AWS config, table name,
// and optional options. Call [Client.Connect] on the returned client before use.
func New(awsCfg *aws.Config, tableName string, opts ...Option) *Client {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	return &Client{
		awsCfg:    awsCfg,
		tableName: tableName,
		opts:      options,
	}
}

// Connect initializes the DynamoDB client from the AWS config provided to [New].
// It must be called before any other Client methods, and must complete before
// the Client is used concurrently.
func (c *Client) Connect() error {
	if err := c.opts.validate(); err != nil {
		return fmt.Errorf("invalid DynamoDB options: %w", err)
	}

	// Use injected DynamoDB API if provided (useful for testing).
	if c.opts.dynamoDBAPI != nil {
		c.client = c.opts.dynamoDBAPI
		return nil
	}

	if c.awsCfg == nil {
		return errors.New("AWS config cannot be nil")
	}

	c.client = dynamodb.NewFromConfig(*c.awsCfg, func(o *dynamodb.Options) {
		if c.opts.endpoint != "" {
			o.BaseEndpoint = aws.String(c.opts.endpoint)
		}

		if c.opts.maxRetryAttempts > 0 {
			o.Retryer = retry.AddWithMaxAttempts(o.Retryer, c.opts.maxRetryAttempts)
		}

		if c.opts.maxRetryBackoffDelay > 0 {
			o.Retryer = retry.AddWithMaxBackoffDelay(o.Retryer, c.opts.maxRetryBackoffDelay)
		}
	})

	return nil
}

// TableName returns the table name supplied to [New].
func (c *Client) TableName() string {
	return c.tableName
}

// Init validates the DynamoDB table schema. It checks that the table exists,
// is active, has a simple primary key on contactId of type string, and has a
// stream enabled with the NEW_AND_OLD_IMAGES view type.
//
// Pass skipSchemaValidation true to skip all checks and return immediately,
// which is useful when schema validation is managed separately.
func (c *Client) Init(ctx context.Context, skipSchemaValidation bool) error {
	if skipSchemaValidation {
		return nil
	}

	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	}

	response, err := c.client.DescribeTable(ctx, input)
	if err != nil {
		var notFoundError *dynamodbtypes.ResourceNotFoundException
		if errors.As(err, &notFoundError) {
			return fmt.Errorf("table %s does not exist", c.tableName)
		}
		return fmt.Errorf("failed to describe table %s: %w", c.tableName, err)
	}

	table := response.Table
	if table == nil {
		return fmt.Errorf("table %s has no description", c.tableName)
	}

	if len(table.KeySchema) < 1 {
		return fmt.Errorf("table %s has no key schema", c.tableName)
	}

	if len(table.KeySchema) > 1 {
		return fmt.Errorf("table %s has a composite primary key, expected simple", c.tableName)
	}

	if aws.ToString(table.KeySchema[0].AttributeName) != ContactIDAttr {
		return fmt.Errorf("table %s has partition key %s, expected %s", c.tableName, aws.ToString(table.KeySchema[0].AttributeName), ContactIDAttr)
	}

	if err := verifyAttributeType(table, ContactIDAttr, dynamodbtypes.ScalarAttributeTypeS); err != nil {
		return err
	}

	if table.TableStatus != dynamodbtypes.TableStatusActive {
		return fmt.Errorf("table %s is not active (status: %s)", c.tableName, table.TableStatus)
	}

	if table.StreamSpecification == nil || !aws.ToBool(table.StreamSpecification.StreamEnabled) {
		return fmt.Errorf("table %s has no stream enabled", c.tableName)
	}

	if table.StreamSpecification.StreamViewType != dynamodbtypes.StreamViewTypeNewAndOldImages {
		return fmt.Errorf("table %s has stream view type %s, expected %s", c.tableName, table.StreamSpecification.StreamViewType, dynamodbtypes.StreamViewTypeNewAndOldImages)
	}

	return nil
}

// CreateTable creates the contacts table with on-demand billing and a
// NEW_AND_OLD_IMAGES stream, then waits for it to become active. It is a
// no-op if the table already exists.
//
// This method is intended for local development and tests.
func (c *Client) CreateTable(ctx context.Context) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(c.tableName),
		AttributeDefinitions: []dynamodbtypes.AttributeDefinition{
			{
				AttributeName: aws.String(ContactIDAttr),
				AttributeType: dynamodbtypes.ScalarAttributeTypeS,
			},
		},
		KeySchema: []dynamodbtypes.KeySchemaElement{
			{
				AttributeName: aws.String(ContactIDAttr),
				KeyType:       dynamodbtypes.KeyTypeHash,
			},
		},
		BillingMode: dynamodbtypes.BillingModePayPerRequest,
		StreamSpecification: &dynamodbtypes.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: dynamodbtypes.StreamViewTypeNewAndOldImages,
		},
	}

	if _, err := c.client.CreateTable(ctx, input); err != nil {
		var inUseError *dynamodbtypes.ResourceInUseException
		if errors.As(err, &inUseError) {
			c.opts.logger.WithField("table_name", c.tableName).Debug("DynamoDB table already exists")
			return nil
		}
		return fmt.Errorf("failed to create DynamoDB table %s: %w", c.tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.client)

	describeInput := &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	}

	if err := waiter.Wait(ctx, describeInput, c.opts.tableCreationMaxWait); err != nil {
		return fmt.Errorf("DynamoDB table %s did not become active: %w", c.tableName, err)
	}

	c.opts.logger.WithField("table_name", c.tableName).Info("DynamoDB table created")

	return nil
}

// DropAllData deletes every item from the DynamoDB table. It scans the table
// in pages and removes each page using BatchWriteItem with exponential backoff
// for unprocessed items.
//
// This method is intended for use in tests only. Do not call it in production.
func (c *Client) DropAllData(ctx context.Context) error {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(c.tableName),
		ProjectionExpression: aws.String("#id"),
		ExpressionAttributeNames: map[string]string{
			"#id": ContactIDAttr,
		},
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		output, err := c.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to scan DynamoDB table %s: %w", c.tableName, err)
		}

		if err := c.deleteItems(ctx, output.Items); err != nil {
			return err
		}

		if output.LastEvaluatedKey == nil {
			break
		}

		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return nil
}

// deleteItems removes items in batches of batchWriteLimit, running up to
// maxConcurrentBatchWrites batches at a time.
func (c *Client) deleteItems(ctx context.Context, items []map[string]dynamodbtypes.AttributeValue) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxConcurrentBatchWrites)

	for i := 0; i < len(items); i += batchWriteLimit {
		end := min(i+batchWriteLimit, len(items))

		requestItems := make([]dynamodbtypes.WriteRequest, 0, end-i)

		for _, item := range items[i:end] {
			requestItems = append(requestItems, dynamodbtypes.WriteRequest{
				DeleteRequest: &dynamodbtypes.DeleteRequest{
					Key: map[string]dynamodbtypes.AttributeValue{
						ContactIDAttr: item[ContactIDAttr],
					},
				},
			})
		}

		if err := sem.Acquire(gctx, 1); err != nil {
			break // A batch failed or ctx was cancelled; Wait reports it.
		}

		g.Go(func() error {
			defer sem.Release(1)
			return c.batchWrite(gctx, requestItems)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// ListContacts scans the whole table, following pagination, and returns every
// contact in scan order. Every item must carry contactId, name and telephone;
// an incomplete item fails the whole listing. Returns an empty, non-nil slice
// if the table is empty.
func (c *Client) ListContacts(ctx context.Context) ([]contacts.Contact, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(c.tableName),
	}

	result := []contacts.Contact{}

	for {
		output, err := c.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DynamoDB table %s: %w", c.tableName, err)
		}

		for _, item := range output.Items {
			contact, err := unmarshalContact(item)
			if err != nil {
				return nil, fmt.Errorf("failed to decode item from DynamoDB table %s: %w", c.tableName, err)
			}

			if !contact.Complete() {
				return nil, fmt.Errorf("contact %s in DynamoDB table %s is incomplete: %w", contact.ContactID, c.tableName, ErrMissingAttribute)
			}

			result = append(result, contact)
		}

		if output.LastEvaluatedKey == nil {
			break
		}

		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	return result, nil
}

// GetContact retrieves a contact by ID. Attributes missing from the stored
// item are left nil. Returns (nil, nil) if no contact is found.
//
// The ID is used verbatim; the returned contact always carries it, even if
// the stored item lacks a contactId attribute of its own.
func (c *Client) GetContact(ctx context.Context, contactID string) (*contacts.Contact, error) {
	input := &dynamodb.GetItemInput{
		TableName:              aws.String(c.tableName),
		Key:                    contactKey(contactID),
		ReturnConsumedCapacity: dynamodbtypes.ReturnConsumedCapacityTotal,
	}

	output, err := c.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s from DynamoDB table %s: %w", contactID, c.tableName, err)
	}

	c.logConsumedCapacity("GetItem", output.ConsumedCapacity)

	if output.Item == nil {
		return nil, nil
	}

	contact := contacts.Contact{ContactID: contactID}

	if contact.Name, err = optionalStringAttr(output.Item, NameAttr); err != nil {
		return nil, fmt.Errorf("failed to decode contact %s: %w", contactID, err)
	}

	if contact.Telephone, err = optionalStringAttr(output.Item, TelephoneAttr); err != nil {
		return nil, fmt.Errorf("failed to decode contact %s: %w", contactID, err)
	}

	return &contact, nil
}

// PutContact writes a contact to DynamoDB, overwriting any item with the same
// contactId.
func (c *Client) PutContact(ctx context.Context, contact contacts.Contact) error {
	if contact.ContactID == "" {
		return errors.New("contact ID cannot be empty")
	}

	input := &dynamodb.PutItemInput{
		TableName:              aws.String(c.tableName),
		Item:                   marshalContact(contact),
		ReturnConsumedCapacity: dynamodbtypes.ReturnConsumedCapacityTotal,
	}

	output, err := c.client.PutItem(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to write contact %s to DynamoDB table %s: %w", contact.ContactID, c.tableName, err)
	}

	c.logConsumedCapacity("PutItem", output.ConsumedCapacity)

	return nil
}

func (c *Client) batchWrite(ctx context.Context, requestItems []dynamodbtypes.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]dynamodbtypes.WriteRequest{
			c.tableName: requestItems,
		},
	}

	// Retry with exponential backoff for unprocessed items.
	const maxRetries = 5
	backoff := 50 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := c.client.BatchWriteItem(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to batch write to DynamoDB table %s: %w", c.tableName, err)
		}

		if len(result.UnprocessedItems) == 0 {
			return nil
		}

		if attempt == maxRetries {
			return fmt.Errorf("%d unprocessed items after %d retries", len(result.UnprocessedItems[c.tableName]), maxRetries)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
		input.RequestItems = result.UnprocessedItems
	}

	return nil
}

func (c *Client) logConsumedCapacity(operation string, capacity *dynamodbtypes.ConsumedCapacity) {
	if capacity == nil {
		return
	}

	c.opts.logger.
		WithField("table_name", c.tableName).
		WithField("operation", operation).
		WithField("capacity_units", aws.ToFloat64(capacity.CapacityUnits)).
		Debug("DynamoDB consumed capacity")
}

func verifyAttributeType(table *dynamodbtypes.TableDescription, name string, expected dynamodbtypes.ScalarAttributeType) error {
	for _, def := range table.AttributeDefinitions {
		if aws.ToString(def.AttributeName) != name {
			continue
		}

		if def.AttributeType != expected {
			return fmt.Errorf("attribute %s in table %s has type %s, expected %s", name, aws.ToString(table.TableName), def.AttributeType, expected)
		}

		return nil
	}

	return fmt.Errorf("attribute %s is not defined in table %s", name, aws.ToString(table.TableName))
}
