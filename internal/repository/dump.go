package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrMissingID is returned for documents without an id field.
var ErrMissingID = errors.New("repository: document has no id")

// Dump is a JSON export of the document collections.
type Dump struct {
	Restaurants []json.RawMessage `json:"restaurants"`
	Reviews     []json.RawMessage `json:"reviews"`
	MenuItems   []json.RawMessage `json:"menuItems"`
}

// LoadDump reads a dump file.
func LoadDump(path string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read dump: %w", err)
	}
	return ParseDump(data)
}

// ParseDump decodes a dump.
func ParseDump(data []byte) (*Dump, error) {
	var d Dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("repository: failed to decode dump: %w", err)
	}
	return &d, nil
}

// DocumentID extracts the string id field of a raw document.
func DocumentID(raw json.RawMessage) (string, error) {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("repository: failed to decode document: %w", err)
	}
	if len(head.ID) == 0 || string(head.ID) == "null" {
		return "", ErrMissingID
	}

	var id string
	if err := json.Unmarshal(head.ID, &id); err != nil {
		return "", fmt.Errorf("repository: unsupported id %s", head.ID)
	}
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}
