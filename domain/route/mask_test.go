package route_test

import (
	"testing"

	"github.com/strutkit/strut/domain/route"
)

func TestCompile_LiteralMask(t *testing.T) {
	m, err := route.Compile("posts/all")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"posts/all", true},
		{"posts/all/", false},
		{"posts", false},
		{"posts/all/extra", false},
		{"xposts/all", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if _, ok := m.Match(tt.path); ok != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, ok, tt.want)
			}
		})
	}
}

func TestCompile_Placeholders(t *testing.T) {
	m, err := route.Compile("posts/:id/comments/:comment_id")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	names := m.ParamNames()
	if len(names) != 2 || names[0] != "id" || names[1] != "comment_id" {
		t.Fatalf("ParamNames = %v, want [id comment_id]", names)
	}

	params, ok := m.Match("posts/42/comments/7")
	if !ok {
		t.Fatalf("expected match")
	}
	if params.At(0) != "42" || params.At(1) != "7" {
		t.Errorf("positional params = %q, %q, want 42, 7", params.At(0), params.At(1))
	}
	if params.Get("id") != "42" || params.Get("comment_id") != "7" {
		t.Errorf("named params = %q, %q, want 42, 7", params.Get("id"), params.Get("comment_id"))
	}

	if _, ok := m.Match("posts//comments/7"); ok {
		t.Error("placeholder matched an empty segment")
	}
}

func TestCompile_Wildcard(t *testing.T) {
	m, err := route.Compile(route.Wildcard)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(m.ParamNames()) != 0 {
		t.Errorf("wildcard should extract no params, got %v", m.ParamNames())
	}

	for _, path := range []string{"a", "anything/at/all", "/"} {
		if _, ok := m.Match(path); !ok {
			t.Errorf("wildcard did not match %q", path)
		}
	}
	if _, ok := m.Match(""); ok {
		t.Error("wildcard matched the empty path")
	}
}

func TestCompile_RegexMetaInLiterals(t *testing.T) {
	m, err := route.Compile("files/v1.2/:name")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if _, ok := m.Match("files/v1x2/readme"); ok {
		t.Error("dot in literal segment matched as regex metachar")
	}
	if _, ok := m.Match("files/v1.2/readme"); !ok {
		t.Error("literal segment with dot did not match verbatim")
	}
}

func TestMaskCache_Memoizes(t *testing.T) {
	cache := route.NewMaskCache()

	first, err := cache.Compile("post/:id")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := cache.Compile("post/:id")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if first != second {
		t.Error("second compilation returned a distinct Mask, cache miss")
	}
	if got := cache.Compilations(); got != 1 {
		t.Errorf("Compilations = %d, want 1", got)
	}

	if _, err := cache.Compile("user/:id"); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if got := cache.Compilations(); got != 2 {
		t.Errorf("Compilations = %d, want 2", got)
	}
}
