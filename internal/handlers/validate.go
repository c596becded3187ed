package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"newsbombs/internal/articles"
)

// maxJSONBody caps create and update request bodies.
const maxJSONBody = 50 << 20

// requestError is a malformed request rejected before it reaches the
// service layer.
type requestError struct {
	status   int
	messages []string
}

func (e *requestError) Error() string {
	return strings.Join(e.messages, "; ")
}

// decodeJSON reads a single JSON object into dst. Unknown properties are
// rejected. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var (
		maxErr    *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxErr):
		return &requestError{status: http.StatusRequestEntityTooLarge, messages: []string{"request entity too large"}}
	case errors.As(err, &syntaxErr):
		return &requestError{status: http.StatusBadRequest, messages: []string{
			fmt.Sprintf("Unexpected token in JSON at position %d", syntaxErr.Offset),
		}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &requestError{status: http.StatusBadRequest, messages: []string{"Unexpected end of JSON input"}}
	case errors.As(err, &typeErr):
		return &requestError{status: http.StatusBadRequest, messages: []string{typeMessage(typeErr)}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &requestError{status: http.StatusBadRequest, messages: []string{
			fmt.Sprintf("property %s should not exist", field),
		}}
	default:
		return &requestError{status: http.StatusBadRequest, messages: []string{err.Error()}}
	}
}

// typeMessage phrases a JSON type mismatch for the client.
func typeMessage(e *json.UnmarshalTypeError) string {
	field := e.Field
	if field == "" {
		return "request body must be a JSON object"
	}
	if i := strings.IndexByte(field, '.'); i > 0 {
		field = field[:i]
	}
	t := e.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return field + " must be a boolean value"
	case reflect.Slice:
		return field + " must be an array"
	case reflect.String:
		return field + " must be a string"
	default:
		return field + " has an invalid type"
	}
}

// listOptions reads ?tag=, ?limit= and ?offset= from a public listing
// request.
func listOptions(r *http.Request) (articles.ListOptions, error) {
	q := r.URL.Query()
	opts := articles.ListOptions{Tag: strings.TrimSpace(q.Get("tag"))}

	var msgs []string
	parse := func(name string, dst *int) {
		v := q.Get(name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			msgs = append(msgs, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}
	parse("limit", &opts.Limit)
	parse("offset", &opts.Offset)

	if len(msgs) > 0 {
		return opts, &requestError{status: http.StatusBadRequest, messages: msgs}
	}
	return opts, nil
}
