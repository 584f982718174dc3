package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// CreatedResult is returned for a 201 response that points at the new
// resource through its Location header instead of a body.
type CreatedResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	CardNumber *string `json:"cardNumber"`
	Location   string  `json:"location"`
}

// AcceptedResult is returned for a 201 response without a Location header.
type AcceptedResult struct {
	Success bool `json:"success"`
}

// HTMLResult wraps a 2xx body that is not JSON. Some endpoints answer with an
// HTML fragment.
type HTMLResult struct {
	HTML string `json:"html"`
}

var cardLocationPattern = regexp.MustCompile(`/cards/(\d+)`)

// normalize turns a remote response into a result or a RemoteError.
func normalize(resp *http.Response) (any, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if resp.StatusCode == http.StatusCreated {
		location := resp.Header.Get("Location")
		if location == "" {
			return AcceptedResult{Success: true}, nil
		}

		created := CreatedResult{
			Success:  true,
			Message:  "Card created",
			Location: location,
		}
		if m := cardLocationPattern.FindStringSubmatch(location); m != nil {
			created.CardNumber = &m[1]
		}
		return created, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return decodeBody(body), nil
}

// decodeBody parses JSON, falling back to wrapping the raw text. A body of
// only whitespace counts as empty. Numbers decode as json.Number so ids
// beyond float64 precision are relayed unchanged.
func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return HTMLResult{HTML: string(body)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return HTMLResult{HTML: string(body)}
	}

	return parsed
}
