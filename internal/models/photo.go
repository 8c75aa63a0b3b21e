package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PhotoList decodes a list whose entries are either URL strings or objects
// carrying a url field. Entries without a usable URL are dropped.
type PhotoList []string

func (p *PhotoList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: photo list: %w", err)
	}

	out := make(PhotoList, 0, len(raw))
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			URL         string `json:"url"`
			DownloadURL string `json:"downloadURL"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		switch {
		case obj.URL != "":
			out = append(out, obj.URL)
		case obj.DownloadURL != "":
			out = append(out, obj.DownloadURL)
		}
	}
	*p = out
	return nil
}
