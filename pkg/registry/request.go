package registry

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request is what an operation binding produces: an HTTP call relative to the
// account-scoped root of the remote service.
type Request struct {
	Method string

	// Path starts with "/" and is appended to {baseURL}/{account}
	Path string

	// Body is JSON-encoded when non-nil
	Body any

	// Filter post-processes a decoded JSON response
	Filter func(any) any
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s", r.Method, r.Path)
}

func pathOf(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// MoveKind selects which endpoint a card move is sent to.
type MoveKind int

const (
	MoveToColumn MoveKind = iota
	MoveToDone
	MoveToNotNow
)

const (
	verbDone   = "done"
	verbNotNow = "not_now"
)

// MoveTarget is where a card is moved. "done" and "not_now" are not columns in
// the remote service; they map to the closure and not-now endpoints.
type MoveTarget struct {
	Kind     MoveKind
	ColumnID string
}

var (
	ToDone   = MoveTarget{Kind: MoveToDone}
	ToNotNow = MoveTarget{Kind: MoveToNotNow}
)

func ToColumn(id string) MoveTarget {
	return MoveTarget{Kind: MoveToColumn, ColumnID: id}
}

// ParseMoveTarget maps the column argument of move_card to a target.
func ParseMoveTarget(column string) MoveTarget {
	switch column {
	case verbDone:
		return ToDone
	case verbNotNow:
		return ToNotNow
	default:
		return ToColumn(column)
	}
}

// Request builds the remote call that moves the given card to the target.
func (t MoveTarget) Request(cardID string) *Request {
	switch t.Kind {
	case MoveToDone:
		return &Request{Method: http.MethodPost, Path: pathOf("cards", cardID, "closure")}
	case MoveToNotNow:
		return &Request{Method: http.MethodPost, Path: pathOf("cards", cardID, "not_now")}
	default:
		return &Request{
			Method: http.MethodPatch,
			Path:   pathOf("cards", cardID, "column"),
			Body:   map[string]string{"column_id": t.ColumnID},
		}
	}
}

func (t MoveTarget) String() string {
	switch t.Kind {
	case MoveToDone:
		return verbDone
	case MoveToNotNow:
		return verbNotNow
	default:
		return "column " + t.ColumnID
	}
}
