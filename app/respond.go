package app

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/strutkit/strut/domain/route"
)

// Response is the rendered outcome of one dispatch run, ready for the
// transport adapter to emit.
type Response struct {
	Status      int
	ContentType string
	Header      map[string]string
	Body        []byte
}

// Preflight is the value returned by the automatic OPTIONS route.
// Rendering it emits an Allow header and an empty body.
type Preflight struct {
	Methods []route.Method
}

// render negotiates the encoding of a handler result:
// absent value -> empty text/html body; string -> raw text/html;
// xml.Marshaler -> application/xml; anything else -> pretty-printed JSON.
//
// JSON key order is encoding/json's deterministic order (struct fields
// in declaration order, map keys sorted), stable across runs.
func render(value any) (*Response, error) {
	resp := &Response{
		Status:      http.StatusOK,
		ContentType: "text/html",
		Header:      make(map[string]string),
	}

	switch v := value.(type) {
	case nil:
		return resp, nil

	case Preflight:
		allowed := make([]string, len(v.Methods))
		for i, m := range v.Methods {
			allowed[i] = string(m)
		}
		resp.Header["Allow"] = strings.Join(allowed, ", ")
		return resp, nil

	case string:
		resp.Body = []byte(v)
		return resp, nil

	case xml.Marshaler:
		body, err := xml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode xml: %w", err)
		}
		resp.ContentType = "application/xml"
		resp.Body = body
		return resp, nil

	default:
		body, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		resp.ContentType = "application/json"
		resp.Body = body
		return resp, nil
	}
}

// statusResponse renders a failure as a minimal status-line body.
func statusResponse(status int) *Response {
	return &Response{
		Status:      status,
		ContentType: "text/html",
		Header:      make(map[string]string),
		Body:        []byte(fmt.Sprintf("%d %s", status, http.StatusText(status))),
	}
}
