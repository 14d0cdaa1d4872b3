package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/harmock/pkg/webarchive"
)

// Mappings is an ordered list of domain mappings. In files it is written
// either as a mapping from source prefix to replacement, whose key order is
// preserved, or as a list of {from, to} objects.
type Mappings []webarchive.DomainMapping

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Mappings, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var from, to string
			if err := node.Content[i].Decode(&from); err != nil {
				return fmt.Errorf("domainMappings key: %w", err)
			}
			if err := node.Content[i+1].Decode(&to); err != nil {
				return fmt.Errorf("domainMappings[%q]: %w", from, err)
			}
			out = append(out, webarchive.DomainMapping{From: from, To: to})
		}
		*m = out
		return nil
	case yaml.SequenceNode:
		var list []webarchive.DomainMapping
		if err := node.Decode(&list); err != nil {
			return err
		}
		*m = list
		return nil
	default:
		return fmt.Errorf("line %d: domainMappings must be a mapping or a list", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler, writing the ordered mapping form.
func (m Mappings) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, dm := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: dm.From},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: dm.To},
		)
	}
	return node, nil
}

// UnmarshalJSON implements json.Unmarshaler. Object key order is preserved
// by reading the object token by token.
func (m *Mappings) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []webarchive.DomainMapping
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*m = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("domainMappings must be an object or an array")
	}

	var out Mappings
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		from, _ := keyTok.(string)
		var to string
		if err := dec.Decode(&to); err != nil {
			return fmt.Errorf("domainMappings[%q]: %w", from, err)
		}
		out = append(out, webarchive.DomainMapping{From: from, To: to})
	}
	*m = out
	return nil
}

// MarshalJSON implements json.Marshaler, writing an object in list order.
func (m Mappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dm := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(dm.From)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(dm.To)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseMapping parses a "from=to" command line mapping. Only the first '='
// separates the two sides.
func ParseMapping(s string) (webarchive.DomainMapping, error) {
	from, to, ok := strings.Cut(s, "=")
	if !ok || from == "" {
		return webarchive.DomainMapping{}, fmt.Errorf("%w: mapping %q must have the form from=to", ErrInvalidConfig, s)
	}
	return webarchive.DomainMapping{From: from, To: to}, nil
}
