// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// ParseResourceAttributes parses a comma-separated list of key=value pairs,
// e.g. "deployment=prod,region=eu-west-1".
func ParseResourceAttributes(input string) (map[string]string, error) {
	attributes := make(map[string]string)
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid attribute format '%s': expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("empty attribute key in '%s'", pair)
		}
		attributes[key] = strings.TrimSpace(value)
	}
	return attributes, nil
}

// toAttributes converts attrs to OpenTelemetry attributes, ordered by key.
func toAttributes(attrs map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		result = append(result, attribute.String(k, attrs[k]))
	}
	return result
}
