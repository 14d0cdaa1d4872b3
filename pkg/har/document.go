package har

import (
	"bytes"
	"encoding/json"
)

// Document is a parsed archive. Two shapes are accepted:
//
//	{ "log": { "entries": [...] } }   standard HAR
//	{ "entries": [...] }              bare entry list
//
// When both keys are present the log shape wins.
type Document struct {
	Log     *Log    `json:"log,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
}

// documentShape mirrors Document without its UnmarshalJSON method.
type documentShape struct {
	Log     *Log    `json:"log"`
	Entries []Entry `json:"entries"`
}

// UnmarshalJSON decodes either document shape. A top-level value that is not
// an object decodes to an empty Document.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*d = Document{}
		return nil
	}

	var shape documentShape
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return err
	}
	*d = Document(shape)
	return nil
}

// AllEntries returns the captured entries in capture order, or nil when the
// document carries neither shape. It never fails.
func (d *Document) AllEntries() []Entry {
	if d == nil {
		return nil
	}
	if d.Log != nil {
		return d.Log.Entries
	}
	return d.Entries
}
