package outline

import (
	"encoding/json"
	"strconv"

	"github.com/mvp-joe/project-outline/internal/extraction"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Normalize renders a raw literal as the text stored in a token's value.
//
// Absent values become "". Values declared as "array" are serialized as a
// compact JSON list when any entry is positional and as a JSON object
// otherwise. Values declared as "string" are wrapped in double quotes
// verbatim. Everything else passes through unchanged.
func Normalize(value *extraction.Value, declaredType string) string {
	if value == nil {
		return ""
	}

	switch declaredType {
	case "array":
		if value.Type != "array" && len(value.Entries) == 0 {
			return value.Raw
		}
		return string(arrayLiteral(value.Entries))
	case "string":
		return `"` + value.Raw + `"`
	default:
		return value.Raw
	}
}

// arrayLiteral serializes entries in insertion order. In list form keyed
// entries with integer keys overwrite that index and other keys are dropped;
// in object form a repeated key keeps its first position and last value.
func arrayLiteral(entries []extraction.Entry) json.RawMessage {
	positional := false
	for _, e := range entries {
		if !e.Keyed {
			positional = true
			break
		}
	}

	if positional {
		list := make([]json.RawMessage, 0, len(entries))
		for _, e := range entries {
			if !e.Keyed {
				list = append(list, literal(e.Value))
				continue
			}
			idx, err := strconv.Atoi(e.Key)
			if err != nil || idx < 0 {
				continue
			}
			for len(list) <= idx {
				list = append(list, json.RawMessage("null"))
			}
			list[idx] = literal(e.Value)
		}
		return marshal(list)
	}

	obj := orderedmap.New[string, json.RawMessage]()
	for _, e := range entries {
		obj.Set(e.Key, literal(e.Value))
	}
	return marshal(obj)
}

// literal converts a nested value to its JSON form.
func literal(v *extraction.Value) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}

	switch v.Type {
	case "array":
		return arrayLiteral(v.Entries)
	case "string":
		return marshal(v.Raw)
	case "number", "boolean", "null":
		if json.Valid([]byte(v.Raw)) {
			return json.RawMessage(v.Raw)
		}
	}
	return marshal(v.Raw)
}

func marshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
