package compat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrProjectNotFound reports a lookup key absent from the project index.
var ErrProjectNotFound = errors.New("project not found in index")

// ErrPlatformUnsupported reports a project that does not declare the current
// platform in its platforms list.
var ErrPlatformUnsupported = errors.New("platform not supported by project")

// IndexError describes a schema violation in the project index, found while
// loading. Record is the zero-based position in the index array.
type IndexError struct {
	Record int
	Field  string
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("project index record %d: field %q: %s", e.Record, e.Field, e.Reason)
}

// CompatEntry is one declared compatibility version of a project. Meta is
// kept opaque; this tool only consults the version key.
type CompatEntry struct {
	Version string
	Meta    json.RawMessage
}

// CompatList preserves the document order of the compatibility object in the
// index file, so "first declared version" is well defined even though JSON
// objects carry no ordering guarantee once decoded into a map.
type CompatList []CompatEntry

// UnmarshalJSON walks the object token by token instead of decoding into a
// map, keeping the author's key order.
func (c *CompatList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("compatibility: expected object, got %v", tok)
	}
	var out CompatList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var meta json.RawMessage
		if err := dec.Decode(&meta); err != nil {
			return fmt.Errorf("compatibility[%q]: %w", key, err)
		}
		out = append(out, CompatEntry{Version: key, Meta: meta})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// Project is one record in the project index. Only the fields this tool
// reads are modelled; the rest of the record is ignored.
type Project struct {
	Path          string     `json:"path"`
	Platforms     []string   `json:"platforms"`
	Compatibility CompatList `json:"compatibility"`
}

// SupportsPlatform reports whether name appears in the project's declared
// platform list.
func (p *Project) SupportsPlatform(name string) bool {
	for _, plat := range p.Platforms {
		if plat == name {
			return true
		}
	}
	return false
}

// CompatVersion returns the project's first declared compatibility version.
// Document order in the index file defines precedence when a project
// declares several versions.
func (p *Project) CompatVersion() string {
	return p.Compatibility[0].Version
}

// Index is the loaded project index.
type Index []Project

// LoadIndex reads and validates the project index file. Every record must
// carry a path, at least one platform and at least one compatibility
// version; the first violation is reported as an *IndexError.
func LoadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse project index %s: %w", path, err)
	}
	for i, p := range idx {
		switch {
		case p.Path == "":
			return nil, &IndexError{Record: i, Field: "path", Reason: "missing or empty"}
		case len(p.Platforms) == 0:
			return nil, &IndexError{Record: i, Field: "platforms", Reason: "missing or empty"}
		case len(p.Compatibility) == 0:
			return nil, &IndexError{Record: i, Field: "compatibility", Reason: "missing or empty"}
		}
	}
	return idx, nil
}

// Lookup returns the first record whose path equals the given key.
func (idx Index) Lookup(path string) (*Project, error) {
	for i := range idx {
		if idx[i].Path == path {
			return &idx[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", path, ErrProjectNotFound)
}
