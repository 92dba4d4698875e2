package models

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindList
	KindBool
	KindInt
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a frontmatter value: exactly one of string, string list, bool or int.
type Value struct {
	Kind ValueKind
	Str  string
	List []string
	Bool bool
	Int  int
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// ListValue returns a list Value.
func ListValue(items []string) Value { return Value{Kind: KindList, List: items} }

// BoolValue returns a bool Value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IntValue returns an int Value.
func IntValue(n int) Value { return Value{Kind: KindInt, Int: n} }

// IsZero reports whether the value carries no content. A false bool and a
// zero int are still considered present.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindString:
		return v.Str == ""
	case KindList:
		return len(v.List) == 0
	default:
		return false
	}
}

// MarshalJSON encodes the value as its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindInt:
		return json.Marshal(v.Int)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON decodes a JSON string, array of strings, bool or number.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case float64:
		*v = IntValue(int(t))
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("models: list value contains %T", item)
			}
			items = append(items, s)
		}
		*v = ListValue(items)
	case nil:
		*v = StringValue("")
	default:
		return fmt.Errorf("models: unsupported frontmatter value %T", raw)
	}
	return nil
}

// Fields holds the recognised keys exactly as declared in a frontmatter
// block, after per-key coercion but before defaulting.
type Fields map[string]Value

// Has reports whether key was declared.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Frontmatter is the resolved metadata of a document. Every field is
// populated after extraction; Fields keeps what the author actually wrote.
type Frontmatter struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug,omitempty"`
	Author    string   `json:"author,omitempty"`
	Date      string   `json:"date"`
	LastMod   string   `json:"lastmod,omitempty"`
	Excerpt   string   `json:"excerpt"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	Category  Category `json:"category"`
	Featured  bool     `json:"featured"`
	Published bool     `json:"published"`
	Draft     bool     `json:"draft"`
	ReadTime  string   `json:"readTime"`
	Weight    int      `json:"weight,omitempty"`
	Priority  int      `json:"priority,omitempty"`
	Image     string   `json:"image,omitempty"`

	// Fields holds the declared, coerced values of recognised keys.
	Fields Fields `json:"fields,omitempty"`
	// Ignored lists unrecognised keys in declaration order.
	Ignored []string `json:"ignored,omitempty"`
	// Format is "yaml" for --- blocks, "toml" for +++ blocks, empty when absent.
	Format string `json:"format,omitempty"`
}
