// Package emit writes mapped service resources as a YAML stream.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/dnswlt/tagsync/internal/ranger"
	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

const YAMLIndent = 2

// Emitter writes service resources to an io.Writer, one YAML document each.
//
// A notification feed typically delivers the same entity many times.
// Emitter remembers the last resource written for each resource ID in a
// bounded LRU cache and skips resources identical to the remembered one.
type Emitter struct {
	mu      sync.Mutex
	w       io.Writer
	seen    *lru.Cache[string, string]
	emitted int
	skipped int
}

// Stats counts the resources handled by an Emitter.
type Stats struct {
	Emitted int
	Skipped int
}

// New returns an Emitter that remembers up to cacheSize resources.
func New(w io.Writer, cacheSize int) (*Emitter, error) {
	seen, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create emitter cache: %v", err)
	}
	return &Emitter{
		w:    w,
		seen: seen,
	}, nil
}

func encode(res *ranger.ServiceResource) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(YAMLIndent)
	if err := enc.Encode(res); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Emit writes res unless an identical resource with the same ID was written
// before and is still cached. It reports whether res was written.
func (e *Emitter) Emit(res *ranger.ServiceResource) (bool, error) {
	// Map keys are sorted by the encoder, so the encoding is a stable fingerprint.
	bs, err := encode(res)
	if err != nil {
		return false, fmt.Errorf("failed to encode resource %s: %w", res.ID, err)
	}
	doc := string(bs)

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := e.seen.Get(res.ID); ok && prev == doc {
		e.skipped++
		return false, nil
	}
	if _, err := io.WriteString(e.w, "---\n"+doc); err != nil {
		return false, fmt.Errorf("failed to write resource %s: %w", res.ID, err)
	}
	e.seen.Add(res.ID, doc)
	e.emitted++
	return true, nil
}

func (e *Emitter) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{Emitted: e.emitted, Skipped: e.skipped}
}
