package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

const (
	ListBoards     = "list_boards"
	GetBoard       = "get_board"
	CreateBoard    = "create_board"
	ListCards      = "list_cards"
	ListBoardCards = "list_board_cards"
	GetCard        = "get_card"
	CreateCard     = "create_card"
	UpdateCard     = "update_card"
	MoveCard       = "move_card"
	ListColumns    = "list_columns"
	ListComments   = "list_comments"
	AddComment     = "add_comment"
	AddTag         = "add_tag"
	RemoveTag      = "remove_tag"
)

// Default is the registry of every operation the server exposes.
var Default = MustDefault()

// MustDefault builds a fresh registry holding every operation.
func MustDefault() *Registry {
	r := New()
	for _, d := range operations() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

var (
	boardIDField = Field{
		Name:        "board_id",
		Type:        TypeString,
		Required:    true,
		Description: "The board ID",
		Identifier:  true,
	}
	cardIDField = Field{
		Name:        "card_id",
		Type:        TypeString,
		Required:    true,
		Description: "The card number",
		Identifier:  true,
	}
	tagTitleField = Field{
		Name:        "tag_title",
		Type:        TypeString,
		Required:    true,
		Description: "The tag title",
	}
)

type boardArgs struct {
	BoardID string `json:"board_id"`
}

type cardArgs struct {
	CardID string `json:"card_id"`
}

type createBoardArgs struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type listCardsArgs struct {
	BoardID *string `json:"board_id,omitempty"`
}

type createCardArgs struct {
	BoardID     string  `json:"board_id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type updateCardArgs struct {
	CardID      string  `json:"card_id"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type moveCardArgs struct {
	CardID string `json:"card_id"`
	Column string `json:"column"`
}

type commentArgs struct {
	CardID string `json:"card_id"`
	Body   string `json:"body"`
}

type tagArgs struct {
	CardID   string `json:"card_id"`
	TagTitle string `json:"tag_title"`
}

type boardEnvelope struct {
	Board createBoardArgs `json:"board"`
}

type cardFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type cardEnvelope struct {
	Card cardFields `json:"card"`
}

type commentEnvelope struct {
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
}

type taggingBody struct {
	TagTitle string `json:"tag_title"`
}

func operations() []*Descriptor {
	return []*Descriptor{
		{
			Name:        ListBoards,
			Description: "List all boards in the account",
			Bind: bind(func(struct{}) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("boards")}, nil
			}),
		},
		{
			Name:        GetBoard,
			Description: "Get a board by ID",
			Schema:      Schema{boardIDField},
			Bind: bind(func(a boardArgs) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("boards", a.BoardID)}, nil
			}),
		},
		{
			Name:        CreateBoard,
			Description: "Create a new board",
			Schema: Schema{
				{Name: "name", Type: TypeString, Required: true, Description: "The board name"},
				{Name: "description", Type: TypeString, Description: "An optional board description"},
			},
			Bind: bind(func(a createBoardArgs) (*Request, error) {
				return &Request{
					Method: http.MethodPost,
					Path:   pathOf("boards"),
					Body:   boardEnvelope{Board: a},
				}, nil
			}),
		},
		{
			Name:        ListCards,
			Description: "List cards, optionally only those on one board",
			Schema: Schema{
				{Name: "board_id", Type: TypeString, Description: "Only return cards on this board", Identifier: true},
			},
			Bind: bind(func(a listCardsArgs) (*Request, error) {
				req := &Request{Method: http.MethodGet, Path: pathOf("cards")}
				if a.BoardID != nil {
					req.Filter = cardsOnBoard(*a.BoardID)
				}
				return req, nil
			}),
		},
		{
			Name:        ListBoardCards,
			Description: "List the cards of a board using the board-scoped endpoint",
			Schema:      Schema{boardIDField},
			Bind: bind(func(a boardArgs) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("boards", a.BoardID, "cards")}, nil
			}),
		},
		{
			Name:        GetCard,
			Description: "Get a card by its number",
			Schema:      Schema{cardIDField},
			Bind: bind(func(a cardArgs) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("cards", a.CardID)}, nil
			}),
		},
		{
			Name:        CreateCard,
			Description: "Create a card on a board",
			Schema: Schema{
				boardIDField,
				{Name: "title", Type: TypeString, Required: true, Description: "The card title"},
				{Name: "description", Type: TypeString, Description: "An optional card description"},
			},
			Bind: bind(func(a createCardArgs) (*Request, error) {
				return &Request{
					Method: http.MethodPost,
					Path:   pathOf("boards", a.BoardID, "cards"),
					Body:   cardEnvelope{Card: cardFields{Title: &a.Title, Description: a.Description}},
				}, nil
			}),
		},
		{
			Name:        UpdateCard,
			Description: "Update the title or description of a card",
			Schema: Schema{
				cardIDField,
				{Name: "title", Type: TypeString, Description: "The new title"},
				{Name: "description", Type: TypeString, Description: "The new description"},
			},
			Bind: bind(func(a updateCardArgs) (*Request, error) {
				return &Request{
					Method: http.MethodPatch,
					Path:   pathOf("cards", a.CardID),
					Body:   cardEnvelope{Card: cardFields{Title: a.Title, Description: a.Description}},
				}, nil
			}),
		},
		{
			Name:        MoveCard,
			Description: `Move a card to a column. Use "done" to close the card or "not_now" to park it`,
			Schema: Schema{
				cardIDField,
				{
					Name:        "column",
					Type:        TypeString,
					Required:    true,
					Description: `The target column ID, or "done" / "not_now"`,
					Identifier:  true,
					Verbs:       []string{verbDone, verbNotNow},
				},
			},
			Bind: bind(func(a moveCardArgs) (*Request, error) {
				return ParseMoveTarget(a.Column).Request(a.CardID), nil
			}),
		},
		{
			Name:        ListColumns,
			Description: "List the columns of a board",
			Schema:      Schema{boardIDField},
			Bind: bind(func(a boardArgs) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("boards", a.BoardID, "columns")}, nil
			}),
		},
		{
			Name:        ListComments,
			Description: "List the comments on a card",
			Schema:      Schema{cardIDField},
			Bind: bind(func(a cardArgs) (*Request, error) {
				return &Request{Method: http.MethodGet, Path: pathOf("cards", a.CardID, "comments")}, nil
			}),
		},
		{
			Name:        AddComment,
			Description: "Add a comment to a card",
			Schema: Schema{
				cardIDField,
				{Name: "body", Type: TypeString, Required: true, Description: "The comment text"},
			},
			Bind: bind(func(a commentArgs) (*Request, error) {
				var body commentEnvelope
				body.Comment.Body = a.Body
				return &Request{
					Method: http.MethodPost,
					Path:   pathOf("cards", a.CardID, "comments"),
					Body:   body,
				}, nil
			}),
		},
		{
			Name:        AddTag,
			Description: "Tag a card. Tagging toggles: tagging an already tagged card removes the tag",
			Schema:      Schema{cardIDField, tagTitleField},
			Bind:        bind(toggleTag),
		},
		{
			Name:        RemoveTag,
			Description: "Remove a tag from a card. Tagging toggles: removing an absent tag adds it",
			Schema:      Schema{cardIDField, tagTitleField},
			Bind:        bind(toggleTag),
		},
	}
}

// toggleTag backs both add_tag and remove_tag; the remote taggings endpoint
// flips the tag on the card.
func toggleTag(a tagArgs) (*Request, error) {
	return &Request{
		Method: http.MethodPost,
		Path:   pathOf("cards", a.CardID, "taggings"),
		Body:   taggingBody{TagTitle: a.TagTitle},
	}, nil
}

// cardsOnBoard keeps the cards whose board reference matches boardID. Cards
// carry either a nested board object or a flat board_id field.
func cardsOnBoard(boardID string) func(any) any {
	return func(v any) any {
		cards, ok := v.([]any)
		if !ok {
			return v
		}

		filtered := make([]any, 0, len(cards))
		for _, c := range cards {
			card, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if board, ok := card["board"].(map[string]any); ok && sameID(board["id"], boardID) {
				filtered = append(filtered, card)
				continue
			}
			if sameID(card["board_id"], boardID) {
				filtered = append(filtered, card)
			}
		}
		return filtered
	}
}

// sameID compares a decoded JSON id with id. Numbers are written without an
// exponent so large numeric ids still match their decimal form.
func sameID(v any, id string) bool {
	switch n := v.(type) {
	case nil:
		return false
	case string:
		return n == id
	case json.Number:
		return n.String() == id
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64) == id
	default:
		return fmt.Sprint(v) == id
	}
}
