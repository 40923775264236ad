package app_test

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/strutkit/strut/app"
	"github.com/strutkit/strut/domain/route"
)

type sitemap struct {
	Locs []string
}

func (s sitemap) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "sitemap"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, loc := range s.Locs {
		if err := e.EncodeElement(loc, xml.StartElement{Name: xml.Name{Local: "loc"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func serveValue(t *testing.T, value any) *app.Response {
	t.Helper()
	r := app.New(app.Config{})
	if err := r.Get("v", func(ctx context.Context, req *route.Request, params route.Params) (any, error) {
		return value, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return r.Serve(context.Background(), &route.Request{Method: route.GET, Path: "v"})
}

func TestRender_String(t *testing.T) {
	resp := serveValue(t, "<h1>hi</h1>")
	if resp.ContentType != "text/html" {
		t.Errorf("content type = %q, want text/html", resp.ContentType)
	}
	if string(resp.Body) != "<h1>hi</h1>" {
		t.Errorf("body = %q, want the raw string", resp.Body)
	}
}

func TestRender_XMLMarshaler(t *testing.T) {
	resp := serveValue(t, sitemap{Locs: []string{"/a", "/b"}})
	if resp.ContentType != "application/xml" {
		t.Errorf("content type = %q, want application/xml", resp.ContentType)
	}
	body := string(resp.Body)
	if !strings.Contains(body, "<sitemap>") || !strings.Contains(body, "<loc>/a</loc>") {
		t.Errorf("body = %q, want serialized sitemap", body)
	}
}

func TestRender_StructAsJSON(t *testing.T) {
	type item struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}

	resp := serveValue(t, item{ID: 3, Title: "x"})
	if resp.ContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", resp.ContentType)
	}

	body := string(resp.Body)
	// Struct fields keep declaration order and output is indented.
	if !strings.Contains(body, "\"id\": 3") || !strings.Contains(body, "\"title\": \"x\"") {
		t.Errorf("body = %q", body)
	}
	if strings.Index(body, "\"id\"") > strings.Index(body, "\"title\"") {
		t.Errorf("field order not preserved: %q", body)
	}
}

func TestRender_SliceAsJSON(t *testing.T) {
	resp := serveValue(t, []int{1, 2, 3})
	if resp.ContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", resp.ContentType)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(resp.Body)), "[") {
		t.Errorf("body = %q, want a JSON array", resp.Body)
	}
}
