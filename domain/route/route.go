// Package route provides route value types and pure path-mask matching.
// A mask is a pattern string with literal segments and :name placeholders
// that matches request paths and extracts parameter values.
package route

import (
	"fmt"
	"net/url"
	"strings"
)

// Method is an HTTP method supported by the router.
type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	OPTIONS Method = "OPTIONS"
)

// Methods lists every supported method in a fixed order.
// The order is what CORS and Allow headers advertise.
func Methods() []Method {
	return []Method{GET, POST, PUT, DELETE, OPTIONS}
}

// ParseMethod validates a method string (case-insensitive).
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// Request is the read-only view of an inbound request supplied by the
// transport adapter. The core never mutates it.
type Request struct {
	Method Method
	Path   string
	Proto  string

	// Per-verb data maps. Query carries URL query parameters, Form carries
	// POST form values, Put carries the parsed PUT body.
	Query url.Values
	Form  url.Values
	Put   url.Values
}

// Route binds a method and a compiled path mask to a handler slot.
// Routes are registered in insertion order; the order is the tie-break
// for matching (first match wins).
type Route struct {
	Method Method
	Mask   *Mask
}

// Params holds parameter values extracted from a matched path, in the
// order the placeholders appear in the mask.
type Params struct {
	names  []string
	values []string
}

// NewParams pairs ordered names with ordered values.
// Lengths must align; the compiler guarantees this for compiled masks.
func NewParams(names, values []string) Params {
	return Params{names: names, values: values}
}

// Len returns the number of extracted parameters.
func (p Params) Len() int { return len(p.values) }

// At returns the i-th parameter value in placeholder order.
func (p Params) At(i int) string { return p.values[i] }

// Get returns the value for a named placeholder, or "" if absent.
func (p Params) Get(name string) string {
	for i, n := range p.names {
		if n == name {
			return p.values[i]
		}
	}
	return ""
}

// Names returns the placeholder names in mask order.
func (p Params) Names() []string { return p.names }
