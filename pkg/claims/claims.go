// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package claims collects the values of requested claims from a user profile.
package claims

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	// claimTxn is always answered with a fresh identifier (OpenID Connect
	// for Identity Assurance, "txn").
	claimTxn = "txn"

	// placeholderPrefix marks reserved claim names that are answered with
	// PlaceholderValue.
	placeholderPrefix = ":"

	// PlaceholderValue is returned for reserved claim names.
	PlaceholderValue = "placeholder"
)

// Collector maps requested claim names onto a profile.
type Collector struct {
	newTxn func() string
}

// Option configures a Collector.
type Option func(*Collector)

// WithTxnGenerator replaces the generator of "txn" values.
func WithTxnGenerator(gen func() string) Option {
	return func(c *Collector) {
		if gen != nil {
			c.newTxn = gen
		}
	}
}

// NewCollector creates a Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{newTxn: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect returns the values of names found on profile, keyed by the
// requested name including any "#tag" suffix. Names are in snake_case and
// are looked up on the camelCase JSON form of profile. Missing values are
// skipped. Collect returns nil when names is empty or nothing was collected.
func (c *Collector) Collect(names []string, profile any) map[string]any {
	if len(names) == 0 {
		return nil
	}

	var doc string
	if profile != nil {
		if data, err := json.Marshal(profile); err == nil {
			doc = string(data)
		}
	}

	out := make(map[string]any)
	for _, requested := range names {
		if requested == "" {
			continue
		}
		name, tag, tagged := strings.Cut(requested, "#")
		if name == "" {
			continue
		}

		value, ok := c.value(name, doc)
		if !ok {
			continue
		}

		key := name
		if tagged {
			key = name + "#" + tag
		}
		out[key] = value
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Collector) value(name, doc string) (any, bool) {
	switch {
	case name == claimTxn:
		return c.newTxn(), true
	case strings.HasPrefix(name, placeholderPrefix):
		return PlaceholderValue, true
	}
	if doc == "" {
		return nil, false
	}

	r := gjson.Get(doc, gjson.Escape(snakeToCamel(name)))
	if !r.Exists() || r.Type == gjson.Null {
		return nil, false
	}
	return r.Value(), true
}

// Encode renders collected claims as a JSON object, or "" when there are none.
func Encode(collected map[string]any) (string, error) {
	if len(collected) == 0 {
		return "", nil
	}
	data, err := json.Marshal(collected)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// snakeToCamel converts "given_name" into "givenName".
func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
