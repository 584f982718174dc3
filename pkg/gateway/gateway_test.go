package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/mcpchecker/kanban-mcp/pkg/config"
	"github.com/mcpchecker/kanban-mcp/pkg/registry"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// fakeRemote is a stand-in for the Kanban service that records every request
// and answers with a fixed response.
type fakeRemote struct {
	mu       sync.Mutex
	requests []capturedRequest

	status  int
	headers map[string]string
	body    string
	*httptest.Server
}

func newFakeRemote(t *testing.T, status int, body string, headers map[string]string) *fakeRemote {
	t.Helper()

	f := &fakeRemote{status: status, body: body, headers: headers}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(data),
		})
		f.mu.Unlock()

		for k, v := range f.headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	}))
	t.Cleanup(f.Close)

	return f
}

func (f *fakeRemote) Requests() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]capturedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func newTestGateway(t *testing.T, remote *fakeRemote, token string) *Gateway {
	t.Helper()

	endpoint, err := config.NewEndpoint(remote.URL+"/", token, "1")
	require.NoError(t, err)

	return New(endpoint, WithHTTPClient(remote.Client()))
}

func TestGateway_Call_Normalization(t *testing.T) {
	tt := map[string]struct {
		status    int
		body      string
		headers   map[string]string
		operation string
		args      map[string]any
		expected  any
	}{
		"201 with card location": {
			status:    http.StatusCreated,
			headers:   map[string]string{"Location": "/1/cards/42.json"},
			operation: registry.CreateCard,
			args:      map[string]any{"board_id": "b1", "title": "New card"},
			expected: CreatedResult{
				Success:    true,
				Message:    "Card created",
				CardNumber: ptr.To("42"),
				Location:   "/1/cards/42.json",
			},
		},
		"201 with a location that is not a card": {
			status:    http.StatusCreated,
			headers:   map[string]string{"Location": "/1/boards/abc"},
			operation: registry.CreateBoard,
			args:      map[string]any{"name": "Roadmap"},
			expected: CreatedResult{
				Success:  true,
				Message:  "Card created",
				Location: "/1/boards/abc",
			},
		},
		"201 body is ignored when location is set": {
			status:    http.StatusCreated,
			headers:   map[string]string{"Location": "https://boards.example.com/1/cards/7"},
			body:      `{"ignored": true}`,
			operation: registry.CreateCard,
			args:      map[string]any{"board_id": "b1", "title": "New card"},
			expected: CreatedResult{
				Success:    true,
				Message:    "Card created",
				CardNumber: ptr.To("7"),
				Location:   "https://boards.example.com/1/cards/7",
			},
		},
		"201 without location": {
			status:    http.StatusCreated,
			body:      `{"id": "abc"}`,
			operation: registry.AddComment,
			args:      map[string]any{"card_id": "42", "body": "hi"},
			expected:  AcceptedResult{Success: true},
		},
		"200 with empty body": {
			status:    http.StatusOK,
			operation: registry.UpdateCard,
			args:      map[string]any{"card_id": "42", "title": "renamed"},
			expected:  map[string]any{},
		},
		"204 no content": {
			status:    http.StatusNoContent,
			operation: registry.MoveCard,
			args:      map[string]any{"card_id": "42", "column": "done"},
			expected:  map[string]any{},
		},
		"200 with json body": {
			status:    http.StatusOK,
			body:      `[{"id": "b1", "name": "Roadmap"}]`,
			operation: registry.ListBoards,
			args:      map[string]any{},
			expected:  []any{map[string]any{"id": "b1", "name": "Roadmap"}},
		},
		"200 with whitespace body": {
			status:    http.StatusOK,
			body:      " \n\t",
			operation: registry.UpdateCard,
			args:      map[string]any{"card_id": "42", "title": "renamed"},
			expected:  map[string]any{},
		},
		"200 with large numeric ids": {
			status:    http.StatusOK,
			body:      `{"id": 9007199254740993, "number": 12345678}`,
			operation: registry.GetCard,
			args:      map[string]any{"card_id": "12345678"},
			expected:  map[string]any{"id": json.Number("9007199254740993"), "number": json.Number("12345678")},
		},
		"200 with json followed by markup": {
			status:    http.StatusOK,
			body:      `{"id": 1}<div>`,
			operation: registry.GetCard,
			args:      map[string]any{"card_id": "1"},
			expected:  HTMLResult{HTML: `{"id": 1}<div>`},
		},
		"200 with html body": {
			status:    http.StatusOK,
			body:      "<div>not now</div>",
			operation: registry.MoveCard,
			args:      map[string]any{"card_id": "42", "column": "not_now"},
			expected:  HTMLResult{HTML: "<div>not now</div>"},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			remote := newFakeRemote(t, tc.status, tc.body, tc.headers)
			g := newTestGateway(t, remote, "")

			got, err := g.Call(context.Background(), tc.operation, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Len(t, remote.Requests(), 1)
		})
	}
}

func TestGateway_Call_RemoteError(t *testing.T) {
	remote := newFakeRemote(t, http.StatusNotFound, "not found", nil)
	g := newTestGateway(t, remote, "")

	got, err := g.Call(context.Background(), registry.GetCard, map[string]any{"card_id": "999"})
	require.Error(t, err)
	assert.Nil(t, got)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Equal(t, "not found", remoteErr.Body)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, OutcomeRemoteError, Outcome(err))
}

func TestGateway_Call_RequestConstruction(t *testing.T) {
	remote := newFakeRemote(t, http.StatusOK, "{}", nil)
	g := newTestGateway(t, remote, "s3cret")

	_, err := g.Call(context.Background(), registry.CreateCard, map[string]any{
		"board_id":    "b1",
		"title":       "Fix login",
		"description": "500 on submit",
		"status":      "published",
	})
	require.NoError(t, err)

	reqs := remote.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/1/boards/b1/cards", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer s3cret", req.Header.Get("Authorization"))
	// undeclared "status" field is not forwarded
	assert.JSONEq(t, `{"card":{"title":"Fix login","description":"500 on submit"}}`, req.Body)
}

func TestGateway_Call_NoTokenOmitsAuthorization(t *testing.T) {
	remote := newFakeRemote(t, http.StatusOK, "[]", nil)
	g := newTestGateway(t, remote, "")

	_, err := g.Call(context.Background(), registry.ListBoards, map[string]any{})
	require.NoError(t, err)

	reqs := remote.Requests()
	require.Len(t, reqs, 1)
	_, present := reqs[0].Header["Authorization"]
	assert.False(t, present)
	assert.Equal(t, "/1/boards", reqs[0].Path)
	assert.Empty(t, reqs[0].Body)
}

func TestGateway_Call_MoveDispatch(t *testing.T) {
	tt := map[string]struct {
		column string
		method string
		path   string
		body   string
	}{
		"done closes the card": {
			column: "done",
			method: http.MethodPost,
			path:   "/1/cards/42/closure",
		},
		"not_now parks the card": {
			column: "not_now",
			method: http.MethodPost,
			path:   "/1/cards/42/not_now",
		},
		"anything else is a column id": {
			column: "col9",
			method: http.MethodPatch,
			path:   "/1/cards/42/column",
			body:   `{"column_id":"col9"}`,
		},
		"verbs are case sensitive": {
			column: "Done",
			method: http.MethodPatch,
			path:   "/1/cards/42/column",
			body:   `{"column_id":"Done"}`,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			remote := newFakeRemote(t, http.StatusNoContent, "", nil)
			g := newTestGateway(t, remote, "")

			_, err := g.Call(context.Background(), registry.MoveCard, map[string]any{"card_id": "42", "column": tc.column})
			require.NoError(t, err)

			reqs := remote.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, tc.method, reqs[0].Method)
			assert.Equal(t, tc.path, reqs[0].Path)
			if tc.body == "" {
				assert.Empty(t, reqs[0].Body)
				return
			}
			assert.JSONEq(t, tc.body, reqs[0].Body)
		})
	}
}

func TestGateway_Call_ListCardsFiltersByBoard(t *testing.T) {
	body := `[
		{"number": 1, "board": {"id": "b1"}},
		{"number": 2, "board": {"id": "b2"}},
		{"number": 3, "board_id": "b1"}
	]`
	remote := newFakeRemote(t, http.StatusOK, body, nil)
	g := newTestGateway(t, remote, "")

	got, err := g.Call(context.Background(), registry.ListCards, map[string]any{"board_id": "b1"})
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"number": json.Number("1"), "board": map[string]any{"id": "b1"}},
		map[string]any{"number": json.Number("3"), "board_id": "b1"},
	}, got)

	reqs := remote.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/1/cards", reqs[0].Path)

	numeric := newFakeRemote(t, http.StatusOK, `[
		{"number": 1, "board": {"id": 12345678}},
		{"number": 2, "board_id": 12345678},
		{"number": 3, "board_id": 87654321}
	]`, nil)
	got, err = newTestGateway(t, numeric, "").Call(context.Background(), registry.ListCards, map[string]any{"board_id": "12345678"})
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"number": json.Number("1"), "board": map[string]any{"id": json.Number("12345678")}},
		map[string]any{"number": json.Number("2"), "board_id": json.Number("12345678")},
	}, got)

	all, err := g.Call(context.Background(), registry.ListCards, map[string]any{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGateway_Call_FailsBeforeNetwork(t *testing.T) {
	tt := map[string]struct {
		operation string
		args      any
		outcome   string
		errMsg    string
	}{
		"unknown operation": {
			operation: "delete_board",
			args:      map[string]any{"board_id": "b1"},
			outcome:   OutcomeUnknownOperation,
			errMsg:    "unknown operation: delete_board",
		},
		"missing required field": {
			operation: registry.CreateCard,
			args:      map[string]any{"title": "t"},
			outcome:   OutcomeValidationError,
			errMsg:    "missing required fields: board_id",
		},
		"wrong type": {
			operation: registry.GetCard,
			args:      map[string]any{"card_id": float64(42)},
			outcome:   OutcomeValidationError,
			errMsg:    "card_id (expected string, got number)",
		},
		"absent arguments": {
			operation: registry.ListBoards,
			args:      nil,
			outcome:   OutcomeValidationError,
			errMsg:    "arguments are required",
		},
		"path injection in card id": {
			operation: registry.GetCard,
			args:      map[string]any{"card_id": "abc/123"},
			outcome:   OutcomeInvalidIdentifier,
			errMsg:    `invalid card_id "abc/123"`,
		},
		"injection in board id": {
			operation: registry.ListColumns,
			args:      map[string]any{"board_id": "id;drop"},
			outcome:   OutcomeInvalidIdentifier,
			errMsg:    `invalid board_id "id;drop"`,
		},
		"injection in optional board filter": {
			operation: registry.ListCards,
			args:      map[string]any{"board_id": "../boards"},
			outcome:   OutcomeInvalidIdentifier,
			errMsg:    `invalid board_id "../boards"`,
		},
		"injection in column": {
			operation: registry.MoveCard,
			args:      map[string]any{"card_id": "42", "column": "x/../closure"},
			outcome:   OutcomeInvalidIdentifier,
			errMsg:    `invalid column "x/../closure"`,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			remote := newFakeRemote(t, http.StatusOK, "{}", nil)
			g := newTestGateway(t, remote, "")

			got, err := g.Call(context.Background(), tc.operation, tc.args)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Contains(t, err.Error(), tc.errMsg)
			assert.Equal(t, tc.outcome, Outcome(err))
			assert.Empty(t, remote.Requests(), "no request may be sent")
		})
	}
}

func TestGateway_Call_EveryOperationRejectsMissingFields(t *testing.T) {
	remote := newFakeRemote(t, http.StatusOK, "{}", nil)
	g := newTestGateway(t, remote, "")

	for _, d := range g.Registry().Descriptors() {
		var required []string
		for _, f := range d.Schema {
			if f.Required {
				required = append(required, f.Name)
			}
		}
		if len(required) == 0 {
			continue
		}

		t.Run(d.Name, func(t *testing.T) {
			_, err := g.Call(context.Background(), d.Name, map[string]any{})

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, required, verr.Missing)

			wrong := map[string]any{}
			for _, name := range required {
				wrong[name] = []any{}
			}
			_, err = g.Call(context.Background(), d.Name, wrong)
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Mismatched, len(required))
			for i, m := range verr.Mismatched {
				assert.Equal(t, TypeMismatch{Field: required[i], Expected: "string", Actual: "array"}, m)
			}
		})
	}

	assert.Empty(t, remote.Requests())
}

func TestGateway_Call_TransportError(t *testing.T) {
	remote := newFakeRemote(t, http.StatusOK, "{}", nil)
	g := newTestGateway(t, remote, "")
	remote.Close()

	_, err := g.Call(context.Background(), registry.ListBoards, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make http request")
	assert.Equal(t, OutcomeTransportError, Outcome(err))
}

func TestOperationFromContext(t *testing.T) {
	assert.Empty(t, OperationFromContext(context.Background()))
	assert.Equal(t, "get_card", OperationFromContext(WithOperation(context.Background(), "get_card")))
}
