package app_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/strutkit/strut/app"
	"github.com/strutkit/strut/domain/route"
)

func newRequest(method route.Method, path string) *route.Request {
	return &route.Request{Method: method, Path: path, Proto: "HTTP/1.1"}
}

func TestRouter_DispatchExtractsParams(t *testing.T) {
	r := app.New(app.Config{})

	var gotID, gotSlug string
	var gotReq *route.Request
	err := r.Get("post/:id/:slug", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		gotID = params.At(0)
		gotSlug = params.At(1)
		gotReq = req
		return nil, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	req := newRequest(route.GET, "post/7/hello-world")
	if _, err := r.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if gotID != "7" || gotSlug != "hello-world" {
		t.Errorf("params = %q, %q, want 7, hello-world", gotID, gotSlug)
	}
	if gotReq != req {
		t.Error("handler did not receive the original request")
	}
}

func TestRouter_FirstMatchWins(t *testing.T) {
	r := app.New(app.Config{})

	invoked := ""
	handler := func(name string) app.HandlerFunc {
		return func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
			invoked = name
			return nil, nil
		}
	}

	if err := r.Get("post/new", handler("literal")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Get("post/:id", handler("placeholder")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := r.Dispatch(context.Background(), newRequest(route.GET, "post/new")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if invoked != "literal" {
		t.Errorf("invoked = %q, want the first-registered route", invoked)
	}

	if _, err := r.Dispatch(context.Background(), newRequest(route.GET, "post/42")); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if invoked != "placeholder" {
		t.Errorf("invoked = %q, want placeholder", invoked)
	}
}

func TestRouter_WildcardMatchesAnyPath(t *testing.T) {
	r := app.New(app.Config{})

	hits := 0
	if err := r.Get(route.Wildcard, func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		hits++
		return nil, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, path := range []string{"a", "deeply/nested/path", "post/1"} {
		if _, err := r.Dispatch(context.Background(), newRequest(route.GET, path)); err != nil {
			t.Errorf("dispatch %q: %v", path, err)
		}
	}
	if hits != 3 {
		t.Errorf("handler invoked %d times, want 3", hits)
	}
}

func TestRouter_MissingRoute(t *testing.T) {
	r := app.New(app.Config{})

	invoked := false
	if err := r.Get("posts", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		invoked = true
		return nil, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name string
		req  *route.Request
	}{
		{"wrong path", newRequest(route.GET, "nope")},
		{"wrong method", newRequest(route.POST, "posts")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), tt.req)
			if !errors.Is(err, app.ErrMissingRoute) {
				t.Fatalf("error = %v, want ErrMissingRoute", err)
			}
		})
	}
	if invoked {
		t.Error("handler invoked for a non-matching request")
	}
}

func TestRouter_RegisterValidation(t *testing.T) {
	r := app.New(app.Config{})
	noop := func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return nil, nil
	}

	tests := []struct {
		name   string
		method route.Method
		mask   string
		h      app.HandlerFunc
	}{
		{"unsupported method", route.Method("PATCH"), "x", noop},
		{"empty mask", route.GET, "", noop},
		{"nil handler", route.GET, "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.method, tt.mask, tt.h)
			if !errors.Is(err, app.ErrInvalidRoute) {
				t.Fatalf("error = %v, want ErrInvalidRoute", err)
			}
		})
	}
}

func TestRouter_ServeEndToEnd(t *testing.T) {
	r := app.New(app.Config{})

	if err := r.Get("items/:id", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return map[string]any{"id": params.Get("id")}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp := r.Serve(context.Background(), newRequest(route.GET, "items/7"))
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if resp.ContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", resp.ContentType)
	}

	body := string(resp.Body)
	if !strings.Contains(body, `"id": "7"`) {
		t.Errorf("body = %q, want param rendered as string", body)
	}
}

func TestRouter_ServeEmptyResult(t *testing.T) {
	r := app.New(app.Config{})

	if err := r.Get("nothing", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp := r.Serve(context.Background(), newRequest(route.GET, "nothing"))
	if resp.Status != 200 {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if resp.ContentType != "text/html" {
		t.Errorf("content type = %q, want text/html", resp.ContentType)
	}
	if len(resp.Body) != 0 {
		t.Errorf("body = %q, want empty", resp.Body)
	}
}

func TestRouter_ServeMapsErrors(t *testing.T) {
	var buf bytes.Buffer
	r := app.New(app.Config{Logger: zerolog.New(&buf)})

	resp := r.Serve(context.Background(), newRequest(route.GET, "missing"))
	if resp.Status != 404 {
		t.Errorf("status = %d, want 404", resp.Status)
	}
	if !strings.Contains(string(resp.Body), "404 Not Found") {
		t.Errorf("body = %q, want status line", resp.Body)
	}
	if !strings.Contains(buf.String(), "dispatch failed") {
		t.Error("failure was not logged")
	}
}

func TestRouter_ServeUnmappedErrorIs500(t *testing.T) {
	var buf bytes.Buffer
	r := app.New(app.Config{Logger: zerolog.New(&buf)})

	boom := errors.New("boom")
	if err := r.Get("broken", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return nil, boom
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp := r.Serve(context.Background(), newRequest(route.GET, "broken"))
	if resp.Status != 500 {
		t.Errorf("status = %d, want 500", resp.Status)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Error("original failure missing from the log")
	}

	r.MapStatus(boom, 418)
	resp = r.Serve(context.Background(), newRequest(route.GET, "broken"))
	if resp.Status != 418 {
		t.Errorf("status after MapStatus = %d, want 418", resp.Status)
	}
}

func TestRouter_CORSHeaders(t *testing.T) {
	r := app.New(app.Config{AllowedOrigin: "https://example.com"})

	if err := r.Get("x", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return nil, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp := r.Serve(context.Background(), newRequest(route.GET, "x"))
	if got := resp.Header["Access-Control-Allow-Methods"]; got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("allow-methods = %q", got)
	}
	if got := resp.Header["Access-Control-Allow-Headers"]; got != "Content-Type" {
		t.Errorf("allow-headers = %q", got)
	}
	if got := resp.Header["Access-Control-Allow-Origin"]; got != "https://example.com" {
		t.Errorf("allow-origin = %q", got)
	}

	// Origin stays absent when not configured, even on failures.
	bare := app.New(app.Config{})
	resp = bare.Serve(context.Background(), newRequest(route.GET, "missing"))
	if _, ok := resp.Header["Access-Control-Allow-Origin"]; ok {
		t.Error("allow-origin emitted without configuration")
	}
	if resp.Header["Access-Control-Allow-Methods"] == "" {
		t.Error("allow-methods missing on failure response")
	}
}

func TestRouter_AutomaticPreflight(t *testing.T) {
	r := app.New(app.Config{})

	resp := r.Serve(context.Background(), newRequest(route.OPTIONS, "anything/at/all"))
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if got := resp.Header["Allow"]; got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Allow = %q", got)
	}
	if len(resp.Body) != 0 {
		t.Errorf("preflight body = %q, want empty", resp.Body)
	}
}
