package model

import "encoding/json"

// NodeAttrs holds per-node attributes. The named fields cover every
// attribute the conversion pipeline reads; anything else the editor emits is
// preserved verbatim in Extra so that a decode/encode round trip is lossless.
type NodeAttrs struct {
	Level    int    // heading level 1-6
	Start    int    // ordered list start index
	Language string // code block language
	Src      string // image source URL
	Alt      string // image alt text

	// AudioIndex is the editor's audio-sync annotation. It is volatile:
	// Sanitize strips it before any export.
	AudioIndex int

	// Extra holds attributes this pipeline does not interpret.
	Extra map[string]json.RawMessage
}

type knownAttrs struct {
	Level      int    `json:"level,omitempty"`
	Start      int    `json:"start,omitempty"`
	Language   string `json:"language,omitempty"`
	Src        string `json:"src,omitempty"`
	Alt        string `json:"alt,omitempty"`
	AudioIndex int    `json:"audioBlockIndex,omitempty"`
}

var knownAttrKeys = map[string]bool{
	"level": true, "start": true, "language": true,
	"src": true, "alt": true, "audioBlockIndex": true,
}

// UnmarshalJSON decodes the known attributes into named fields and keeps the
// remainder in Extra.
func (a *NodeAttrs) UnmarshalJSON(data []byte) error {
	var known knownAttrs
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	a.Level = known.Level
	a.Start = known.Start
	a.Language = known.Language
	a.Src = known.Src
	a.Alt = known.Alt
	a.AudioIndex = known.AudioIndex

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range all {
		if knownAttrKeys[k] {
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]json.RawMessage)
		}
		a.Extra[k] = all[k]
	}
	return nil
}

// MarshalJSON merges the named fields with Extra. Named fields win on key
// collision.
func (a NodeAttrs) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(a.Extra)+6)
	for k, v := range a.Extra {
		merged[k] = v
	}
	known, err := json.Marshal(knownAttrs{
		Level:      a.Level,
		Start:      a.Start,
		Language:   a.Language,
		Src:        a.Src,
		Alt:        a.Alt,
		AudioIndex: a.AudioIndex,
	})
	if err != nil {
		return nil, err
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}
	for k, v := range knownMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// isZero reports whether the attrs carry no information at all.
func (a *NodeAttrs) isZero() bool {
	return a == nil || (a.Level == 0 && a.Start == 0 && a.Language == "" &&
		a.Src == "" && a.Alt == "" && a.AudioIndex == 0 && len(a.Extra) == 0)
}

// clone returns a deep copy of the attrs.
func (a *NodeAttrs) clone() *NodeAttrs {
	if a == nil {
		return nil
	}
	out := *a
	if a.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(a.Extra))
		for k, v := range a.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &out
}
