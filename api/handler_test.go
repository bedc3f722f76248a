package api_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/slackmgr/contacts"
	"github.com/slackmgr/contacts/api"
	"github.com/slackmgr/contacts/internal/contactstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = contacts.Config{TableName: "contacts-test"}

func newTestHandler(t *testing.T, store contacts.Store, opts ...api.Option) (*api.Handler, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return api.New(testConfig, store, logger, opts...), hook
}

func getRequest(id string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/contacts/" + id,
		PathParameters: map[string]string{api.ContactIDParam: id},
	}
}

func createRequest(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/contacts",
		Body:       body,
	}
}

func decodeMessage(t *testing.T, resp events.APIGatewayProxyResponse) string {
	t.Helper()
	var body api.MessageBody
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body.Message
}

func hasErrorEntry(hook *test.Hook) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			return true
		}
	}
	return false
}

// ==================== Configuration ====================

func TestHandlers_MissingTableName(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	logger, _ := test.NewNullLogger()
	h := api.New(contacts.Config{}, store, logger)

	calls := map[string]func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error){
		"list":   h.ListContacts,
		"get":    h.GetContact,
		"create": h.CreateContact,
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			resp, err := call(context.Background(), createRequest(`{"name":"Ada","telephone":"555"}`))
			require.NoError(t, err)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.JSONEq(t, `{"message":"Missing environment variable: TABLE_NAME"}`, resp.Body)
		})
	}

	assert.Zero(t, store.CallCount(), "no store call may be made without a table name")
}

// ==================== ListContacts ====================

func TestListContacts_Empty(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore())

	resp, err := h.ListContacts(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":[]}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestListContacts_AfterCreations(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	h, _ := newTestHandler(t, store)

	const n = 5
	for i := range n {
		resp, err := h.CreateContact(context.Background(), createRequest(fmt.Sprintf(`{"name":"c%d","telephone":"555-010%d"}`, i, i)))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := h.ListContacts(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	require.Len(t, body.Data, n)

	for i, c := range body.Data {
		assert.Len(t, c, 3)
		assert.Contains(t, c, "contactId")
		assert.Equal(t, fmt.Sprintf("c%d", i), c["name"])
		assert.Equal(t, fmt.Sprintf("555-010%d", i), c["telephone"])
	}
}

func TestListContacts_StoreError(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	store.ListErr = errors.New("connection reset by peer")
	h, hook := newTestHandler(t, store)

	resp, err := h.ListContacts(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to retrieve items from table, see log for details", decodeMessage(t, resp))
	assert.NotContains(t, resp.Body, "connection reset")
	assert.True(t, hasErrorEntry(hook))
}

func TestListContacts_Panic(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	store.Panics = true
	h, hook := newTestHandler(t, store)

	resp, err := h.ListContacts(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to retrieve items from table, see log for details", decodeMessage(t, resp))
	assert.True(t, hasErrorEntry(hook))
}

// ==================== GetContact ====================

func TestGetContact_Found(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore(contacts.NewContact("id-1", "Ada", "555-0101")))

	resp, err := h.GetContact(context.Background(), getRequest("id-1"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"id-1","name":"Ada","telephone":"555-0101"}`, resp.Body)
}

func TestGetContact_PartialRecord(t *testing.T) {
	t.Parallel()
	name := "Ada"
	h, _ := newTestHandler(t, contactstest.NewMemoryStore(
		contacts.Contact{ContactID: "no-phone", Name: &name},
		contacts.Contact{ContactID: "bare"},
	))

	resp, err := h.GetContact(context.Background(), getRequest("no-phone"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"no-phone","name":"Ada"}`, resp.Body)

	resp, err = h.GetContact(context.Background(), getRequest("bare"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"bare"}`, resp.Body)
}

func TestGetContact_NotFound(t *testing.T) {
	t.Parallel()
	h, hook := newTestHandler(t, contactstest.NewMemoryStore())

	for _, id := range []string{"missing", "", "not a uuid at all", "../etc"} {
		resp, err := h.GetContact(context.Background(), getRequest(id))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "id %q", id)
		assert.Empty(t, resp.Body)
	}
	assert.False(t, hasErrorEntry(hook))
}

func TestGetContact_MissingPathParameter(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	h, _ := newTestHandler(t, store)

	resp, err := h.GetContact(context.Background(), events.APIGatewayProxyRequest{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to retrieve contact from table, see log for details", decodeMessage(t, resp))
	assert.Zero(t, store.CallCount())
}

func TestGetContact_StoreError(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	store.GetErr = errors.New("throttled")
	h, hook := newTestHandler(t, store)

	resp, err := h.GetContact(context.Background(), getRequest("id-1"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to retrieve contact from table, see log for details", decodeMessage(t, resp))
	assert.True(t, hasErrorEntry(hook))
}

// ==================== CreateContact ====================

func TestCreateContact_Success(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	h, _ := newTestHandler(t, store)

	resp, err := h.CreateContact(context.Background(), createRequest(`{"name":"Ada","telephone":"555-0101"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created contacts.Contact
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &created))

	parsed, err := uuid.Parse(created.ContactID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, parsed.String(), created.ContactID, "ID must be canonical lowercase dashed form")
	assert.Equal(t, "Ada", *created.Name)
	assert.Equal(t, "555-0101", *created.Telephone)

	resp, err = h.GetContact(context.Background(), getRequest(created.ContactID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, fmt.Sprintf(`{"contactId":%q,"name":"Ada","telephone":"555-0101"}`, created.ContactID), resp.Body)
}

func TestCreateContact_FreshIDs(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore())

	seen := make(map[string]bool)
	for range 20 {
		resp, err := h.CreateContact(context.Background(), createRequest(`{"name":"Ada","telephone":"555"}`))
		require.NoError(t, err)

		var created contacts.Contact
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &created))
		assert.False(t, seen[created.ContactID], "duplicate ID %s", created.ContactID)
		seen[created.ContactID] = true
	}
}

func TestCreateContact_InjectedIDGenerator(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore(), api.WithIDGenerator(func() string { return "fixed-id" }))

	resp, err := h.CreateContact(context.Background(), createRequest(`{"name":"Ada","telephone":"555"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"fixed-id","name":"Ada","telephone":"555"}`, resp.Body)
}

func TestCreateContact_IgnoresClientSuppliedID(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore(), api.WithIDGenerator(func() string { return "minted" }))

	resp, err := h.CreateContact(context.Background(), createRequest(`{"contactId":"mine","name":"Ada","telephone":"555"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"minted","name":"Ada","telephone":"555"}`, resp.Body)
}

func TestCreateContact_ValidationErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"telephone":"555"}`, "Missing property in request body: name"},
		{"missing both", `{}`, "Missing property in request body: name"},
		{"null name", `{"name":null,"telephone":"555"}`, "Missing property in request body: name"},
		{"missing telephone", `{"name":"Ada"}`, "Missing property in request body: telephone"},
		{"null telephone", `{"name":"Ada","telephone":null}`, "Missing property in request body: telephone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := contactstest.NewMemoryStore()
			h, _ := newTestHandler(t, store)

			resp, err := h.CreateContact(context.Background(), createRequest(tt.body))
			require.NoError(t, err)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.message, decodeMessage(t, resp))
			assert.Zero(t, store.CallCount())
		})
	}
}

// Malformed bodies are not validation errors; they surface as the generic 500.
func TestCreateContact_MalformedBody(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "name=Ada"},
		{"truncated", `{"name":"Ada"`},
		{"null", "null"},
		{"array", `[]`},
		{"numeric name", `{"name":42,"telephone":"555"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := contactstest.NewMemoryStore()
			h, hook := newTestHandler(t, store)

			resp, err := h.CreateContact(context.Background(), createRequest(tt.body))
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "Failed to add item to table, see log for details", decodeMessage(t, resp))
			assert.Zero(t, store.CallCount())
			assert.True(t, hasErrorEntry(hook))
		})
	}
}

func TestCreateContact_Base64Body(t *testing.T) {
	t.Parallel()
	h, _ := newTestHandler(t, contactstest.NewMemoryStore(), api.WithIDGenerator(func() string { return "id-1" }))

	req := createRequest(base64.StdEncoding.EncodeToString([]byte(`{"name":"Ada","telephone":"555"}`)))
	req.IsBase64Encoded = true

	resp, err := h.CreateContact(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"contactId":"id-1","name":"Ada","telephone":"555"}`, resp.Body)
}

func TestCreateContact_StoreError(t *testing.T) {
	t.Parallel()
	store := contactstest.NewMemoryStore()
	store.PutErr = errors.New("ProvisionedThroughputExceededException")
	h, hook := newTestHandler(t, store)

	resp, err := h.CreateContact(context.Background(), createRequest(`{"name":"Ada","telephone":"555"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to add item to table, see log for details", decodeMessage(t, resp))
	assert.NotContains(t, resp.Body, "Provisioned")
	assert.True(t, hasErrorEntry(hook))
}
