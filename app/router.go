// Package app holds the request dispatcher: an ordered route registry,
// first-match routing, response rendering, and error-to-status mapping.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/strutkit/strut/domain/route"
)

// HandlerFunc is a route handler closure. Extracted path parameters
// arrive in placeholder order alongside the read-only request view.
// The dispatcher does not constrain the returned value; rendering
// negotiates its encoding.
type HandlerFunc func(ctx context.Context, req *route.Request, params route.Params) (any, error)

// ErrInvalidRoute reports a bad registration: unsupported method, empty
// mask, or nil handler. Registration failures are surfaced immediately
// and never caught by the dispatch loop.
var ErrInvalidRoute = errors.New("invalid route")

// ErrMissingRoute reports a request no registered route matched.
var ErrMissingRoute = errors.New("no matching route")

type entry struct {
	method  route.Method
	mask    *route.Mask
	handler HandlerFunc
}

// Config configures a Router.
type Config struct {
	// AllowedOrigin, when set, is emitted as Access-Control-Allow-Origin
	// on every response.
	AllowedOrigin string

	Logger zerolog.Logger
}

// Router matches requests against an ordered route registry and invokes
// the bound handler.
//
// Matching is strictly first-registered-wins: there is no specificity
// ranking, so applications must register literal routes (e.g. post/new)
// before overlapping placeholder routes (post/:id) when both should be
// reachable. This insertion-order precedence is a load-bearing contract.
type Router struct {
	cfg      Config
	masks    *route.MaskCache
	routes   []entry
	statuses []statusMapping
}

// New creates a Router with the automatic OPTIONS * preflight route and
// the default error-status mappings installed.
func New(cfg Config) *Router {
	r := &Router{
		cfg:   cfg,
		masks: route.NewMaskCache(),
	}
	r.statuses = defaultStatusMappings()

	// Preflight answers before any user route can shadow it.
	if err := r.Register(route.OPTIONS, route.Wildcard, preflightHandler); err != nil {
		panic(err) // static registration, cannot fail
	}
	return r
}

// Register appends a route to the registry. Routes are immutable once
// registered.
func (r *Router) Register(method route.Method, mask string, handler HandlerFunc) error {
	if _, err := route.ParseMethod(string(method)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRoute, err)
	}
	if mask == "" {
		return fmt.Errorf("%w: empty path mask", ErrInvalidRoute)
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s %s", ErrInvalidRoute, method, mask)
	}

	compiled, err := r.masks.Compile(mask)
	if err != nil {
		return fmt.Errorf("%w: mask %q: %v", ErrInvalidRoute, mask, err)
	}

	r.routes = append(r.routes, entry{method: method, mask: compiled, handler: handler})
	return nil
}

// Get registers a GET route.
func (r *Router) Get(mask string, handler HandlerFunc) error {
	return r.Register(route.GET, mask, handler)
}

// Post registers a POST route.
func (r *Router) Post(mask string, handler HandlerFunc) error {
	return r.Register(route.POST, mask, handler)
}

// Put registers a PUT route.
func (r *Router) Put(mask string, handler HandlerFunc) error {
	return r.Register(route.PUT, mask, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(mask string, handler HandlerFunc) error {
	return r.Register(route.DELETE, mask, handler)
}

// Options registers an OPTIONS route. The automatic preflight route is
// registered first and matches every path, so it always wins; this
// registrar exists for completeness of the method enum.
func (r *Router) Options(mask string, handler HandlerFunc) error {
	return r.Register(route.OPTIONS, mask, handler)
}

// Dispatch scans the registry in registration order, invokes the first
// route whose method and mask match, and returns the handler's value.
func (r *Router) Dispatch(ctx context.Context, req *route.Request) (any, error) {
	for _, e := range r.routes {
		if e.method != req.Method {
			continue
		}
		params, ok := e.mask.Match(req.Path)
		if !ok {
			continue
		}
		return e.handler(ctx, req, params)
	}
	return nil, fmt.Errorf("%w: %s %s", ErrMissingRoute, req.Method, req.Path)
}

// Serve runs one full request: CORS headers, dispatch, rendering, and
// failure mapping. It never returns an error; failures become mapped
// status responses and are always logged for operators.
func (r *Router) Serve(ctx context.Context, req *route.Request) *Response {
	value, err := r.Dispatch(ctx, req)
	if err != nil {
		return r.fail(req, err)
	}

	resp, err := render(value)
	if err != nil {
		return r.fail(req, err)
	}

	r.applyCORS(resp)
	return resp
}

func (r *Router) fail(req *route.Request, err error) *Response {
	status := r.statusFor(err)
	r.cfg.Logger.Error().
		Err(err).
		Str("method", string(req.Method)).
		Str("path", req.Path).
		Int("status", status).
		Msg("dispatch failed")

	resp := statusResponse(status)
	r.applyCORS(resp)
	return resp
}

func (r *Router) applyCORS(resp *Response) {
	methods := ""
	for i, m := range route.Methods() {
		if i > 0 {
			methods += ", "
		}
		methods += string(m)
	}
	resp.Header["Access-Control-Allow-Methods"] = methods
	resp.Header["Access-Control-Allow-Headers"] = "Content-Type"
	if r.cfg.AllowedOrigin != "" {
		resp.Header["Access-Control-Allow-Origin"] = r.cfg.AllowedOrigin
	}
}

func preflightHandler(ctx context.Context, req *route.Request, params route.Params) (any, error) {
	return Preflight{Methods: route.Methods()}, nil
}
