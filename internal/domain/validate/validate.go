// Package validate collects per-field validation failures for domain entities.
package validate

import (
	"sort"
	"strings"
)

// Error reports every invalid field of an entity at once, keyed by the field
// name used on the wire.
type Error struct {
	Entity string
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Entity)
	for i, k := range keys {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(" ")
		b.WriteString(e.Fields[k])
	}
	return b.String()
}

// Errors accumulates field failures. The first failure recorded for a field wins.
type Errors map[string]string

// Add records msg for field unless the field already failed.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; ok {
		return
	}
	e[field] = msg
}

// Err returns nil when nothing failed, or an *Error for entity.
func (e Errors) Err(entity string) error {
	if len(e) == 0 {
		return nil
	}
	return &Error{Entity: entity, Fields: e}
}
