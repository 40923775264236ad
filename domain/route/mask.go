package route

import (
	"regexp"
	"strings"
	"sync"
)

// Wildcard is the mask that matches any non-empty path with no parameters.
const Wildcard = "*"

// Mask is a compiled path mask: an anchored matcher plus the placeholder
// names in left-to-right order, positionally aligned with capture groups.
type Mask struct {
	Source string
	regex  *regexp.Regexp
	params []string
}

// Compile translates a mask string into a Mask. Each /-delimited segment
// starting with ':' becomes a non-greedy one-or-more capture; literal
// segments match verbatim. The whole path must match.
func Compile(mask string) (*Mask, error) {
	if mask == Wildcard {
		return &Mask{
			Source: mask,
			regex:  regexp.MustCompile(`^.+$`),
		}, nil
	}

	segments := strings.Split(mask, "/")
	parts := make([]string, len(segments))
	var params []string
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok && name != "" {
			params = append(params, name)
			parts[i] = "(.+?)"
			continue
		}
		parts[i] = regexp.QuoteMeta(seg)
	}

	re, err := regexp.Compile("^" + strings.Join(parts, "/") + "$")
	if err != nil {
		return nil, err
	}

	return &Mask{Source: mask, regex: re, params: params}, nil
}

// Match reports whether path satisfies the mask and, on success, returns
// the extracted parameters zipped with the placeholder names.
func (m *Mask) Match(path string) (Params, bool) {
	sub := m.regex.FindStringSubmatch(path)
	if sub == nil {
		return Params{}, false
	}
	return NewParams(m.params, sub[1:]), true
}

// ParamNames returns the placeholder names in mask order.
func (m *Mask) ParamNames() []string { return m.params }

// MaskCache memoizes compiled masks by their source string. The cache is
// append-only and owned by whoever constructs it (typically the router),
// not ambient package state. Matching runs per request against every
// registered route, so repeated compilation must hit the cache.
type MaskCache struct {
	mu       sync.RWMutex
	compiled map[string]*Mask
	misses   int
}

// NewMaskCache creates an empty cache.
func NewMaskCache() *MaskCache {
	return &MaskCache{compiled: make(map[string]*Mask)}
}

// Compile returns the cached Mask for mask, compiling it on first use.
func (c *MaskCache) Compile(mask string) (*Mask, error) {
	c.mu.RLock()
	m, ok := c.compiled[mask]
	c.mu.RUnlock()
	if ok {
		return m, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.compiled[mask]; ok {
		return m, nil
	}
	m, err := Compile(mask)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.compiled[mask] = m
	return m, nil
}

// Compilations returns how many masks have actually been parsed, so tests
// can assert cache hits.
func (c *MaskCache) Compilations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.misses
}
