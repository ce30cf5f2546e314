// Package convert translates XTN trees to and from other data formats.
//
// Every XTN value is text, so values read from typed formats are converted
// to their string form and values written to typed formats are strings.
package convert

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/xtn/pkg/xtn"
)

type Format string

const (
	FormatXTN     Format = "xtn"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgpack Format = "msgpack"
)

var Formats = []Format{FormatXTN, FormatJSON, FormatYAML, FormatTOML, FormatMsgpack}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", errors.Errorf("unknown format %q", s)
	}
	return f, nil
}

// Encode writes obj in the given format.
func Encode(obj *xtn.Object, f Format) ([]byte, error) {
	switch f {
	case FormatXTN:
		if err := CheckKeys(obj); err != nil {
			return nil, err
		}
		return []byte(xtn.Dump(obj)), nil
	case FormatJSON:
		return ToJSON(obj)
	case FormatYAML:
		return ToYAML(obj)
	case FormatTOML:
		return ToTOML(obj)
	case FormatMsgpack:
		return ToMsgpack(obj)
	}
	return nil, errors.Errorf("unknown format %q", f)
}

// CheckKeys reports the first object key under obj that would not read back
// unchanged once written as xtn. Trees parsed from xtn always pass; trees
// decoded from other formats may not.
func CheckKeys(obj *xtn.Object) error {
	return checkKeys(obj, "")
}

func checkKeys(el xtn.Element, path string) error {
	switch v := el.(type) {
	case *xtn.Object:
		for _, m := range v.Members() {
			at := m.Key
			if path != "" {
				at = path + "." + m.Key
			}
			if reason := keyProblem(m.Key, m.Value); reason != "" {
				return errors.Errorf("key %q at %q cannot be written as xtn: %s", m.Key, at, reason)
			}
			if err := checkKeys(m.Value, at); err != nil {
				return err
			}
		}
	case *xtn.Array:
		for i, e := range v.Elements {
			if err := checkKeys(e, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// keyProblem describes why key, holding el, cannot be written. Containers and
// blocks are written with their own marker after the key, so only an inline
// text guards against a key that ends in one.
func keyProblem(key string, el xtn.Element) string {
	inline := false
	if t, ok := el.(*xtn.Text); ok {
		inline = !t.WrittenAsBlock()
	}
	switch {
	case key == "":
		return "it is empty"
	case strings.HasPrefix(key, "#"):
		return "it would start a comment"
	case strings.HasPrefix(key, "+"):
		return "it would start an array element"
	case strings.Contains(key, ":"):
		return "it contains a colon"
	case strings.ContainsAny(key, "\r\n"):
		return "it contains a line break"
	case inline && (strings.HasSuffix(key, "{}") || strings.HasSuffix(key, "[]") || strings.HasSuffix(key, "''")):
		return fmt.Sprintf("it ends in %q", key[len(key)-2:])
	case strings.Join(strings.Fields(key), " ") != key:
		return "its whitespace would be trimmed or collapsed"
	}
	return ""
}

// Decode reads data in the given format into a tree.
func Decode(data []byte, f Format) (*xtn.Object, error) {
	switch f {
	case FormatXTN:
		obj, err := xtn.Parse(string(data))
		if err != nil {
			return nil, errors.Errorf("parsing xtn: %w", err)
		}
		return obj, nil
	case FormatJSON, FormatYAML:
		return FromYAML(data)
	case FormatTOML:
		return FromTOML(data)
	case FormatMsgpack:
		return FromMsgpack(data)
	}
	return nil, errors.Errorf("unknown format %q", f)
}

// ToJSON encodes obj as indented JSON, keeping key order.
func ToJSON(obj *xtn.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, obj); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, errors.Errorf("indenting json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, el xtn.Element) error {
	switch el := el.(type) {
	case *xtn.Text:
		b, err := json.Marshal(el.Value)
		if err != nil {
			return errors.Errorf("encoding text: %w", err)
		}
		buf.Write(b)
	case *xtn.Array:
		buf.WriteByte('[')
		for i, child := range el.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *xtn.Object:
		buf.WriteByte('{')
		for i, m := range el.Members() {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return errors.Errorf("encoding key %q: %w", m.Key, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeJSON(buf, m.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// ToYAML encodes obj as YAML, keeping key order and the comments written
// above elements.
func ToYAML(obj *xtn.Object) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{yamlNode(obj)}}
	doc.HeadComment = yamlComment(obj.CommentsInnerTop)
	doc.FootComment = yamlComment(obj.CommentsInnerBottom)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("encoding yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(el xtn.Element) *yaml.Node {
	switch el := el.(type) {
	case *xtn.Text:
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: el.Value}
		if strings.Contains(el.Value, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n
	case *xtn.Array:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, child := range el.Elements {
			c := yamlNode(child)
			c.HeadComment = yamlComment(child.Head().CommentsAbove)
			n.Content = append(n.Content, c)
		}
		return n
	case *xtn.Object:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, m := range el.Members() {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key}
			key.HeadComment = yamlComment(m.Value.Head().CommentsAbove)
			n.Content = append(n.Content, key, yamlNode(m.Value))
		}
		return n
	}
	return nil
}

// yamlComment renders the non-blank, non-separator comments of cs.
func yamlComment(cs []xtn.Comment) string {
	var lines []string
	for _, c := range cs {
		if c.IsBlank() || c.Prefix == xtn.PrefixSeparator && c.Value == "" {
			continue
		}
		text := c.Value
		if c.Prefix != "" && c.Prefix != xtn.PrefixSeparator {
			text = c.Prefix + " " + text
		}
		for _, l := range strings.Split(text, "\n") {
			lines = append(lines, strings.TrimRight("# "+l, " "))
		}
	}
	return strings.Join(lines, "\n")
}

// ToTOML encodes obj as a TOML document. Key order is not kept.
func ToTOML(obj *xtn.Object) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(xtn.Plain(obj)); err != nil {
		return nil, errors.Errorf("encoding toml: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMsgpack encodes obj as MessagePack with sorted map keys.
func ToMsgpack(obj *xtn.Object) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(xtn.Plain(obj)); err != nil {
		return nil, errors.Errorf("encoding msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

// FromYAML builds a tree from a YAML or JSON document whose top level is a
// mapping. Key order and head comments are kept.
func FromYAML(data []byte) (*xtn.Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Errorf("decoding yaml: %w", err)
	}
	if doc.Kind == 0 {
		return xtn.NewObject(), nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	el, err := fromYAMLNode(root)
	if err != nil {
		return nil, err
	}
	obj, ok := el.(*xtn.Object)
	if !ok {
		return nil, errors.Errorf("top level must be a mapping, got %s", yamlKind(root))
	}
	obj.CommentsInnerTop = xtnComments(doc.HeadComment)
	obj.CommentsInnerBottom = xtnComments(doc.FootComment)
	return obj, nil
}

func fromYAMLNode(n *yaml.Node) (xtn.Element, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return xtn.NewText(""), nil
		}
		return xtn.NewText(n.Value), nil
	case yaml.SequenceNode:
		arr := xtn.NewArray()
		for _, c := range n.Content {
			el, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			el.Head().CommentsAbove = xtnComments(c.HeadComment)
			arr.Elements = append(arr.Elements, el)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := xtn.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if _, exists := obj.Get(k.Value); exists {
				return nil, errors.Errorf("line %d: key %q repeated", k.Line, k.Value)
			}
			el, err := fromYAMLNode(v)
			if err != nil {
				return nil, err
			}
			el.Head().CommentsAbove = xtnComments(k.HeadComment)
			obj.Set(k.Value, el)
		}
		return obj, nil
	}
	return nil, errors.Errorf("line %d: unsupported yaml node %s", n.Line, yamlKind(n))
}

func yamlKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return fmt.Sprintf("kind %d", n.Kind)
}

func xtnComments(s string) []xtn.Comment {
	if s == "" {
		return nil
	}
	var out []xtn.Comment
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			out = append(out, xtn.Comment{})
			continue
		}
		l = strings.TrimPrefix(l, "#")
		out = append(out, xtn.Comment{Value: strings.TrimPrefix(l, " ")})
	}
	return out
}

// FromTOML builds a tree from a TOML document. Keys are sorted.
func FromTOML(data []byte) (*xtn.Object, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, errors.Errorf("decoding toml: %w", err)
	}
	return fromPlainObject(v)
}

// FromMsgpack builds a tree from a MessagePack map. Keys are sorted.
func FromMsgpack(data []byte) (*xtn.Object, error) {
	var v map[string]any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, errors.Errorf("decoding msgpack: %w", err)
	}
	return fromPlainObject(v)
}

func fromPlainObject(v map[string]any) (*xtn.Object, error) {
	el, err := FromPlain(v)
	if err != nil {
		return nil, err
	}
	return el.(*xtn.Object), nil
}

// FromPlain builds an element from decoded values. Maps become objects with
// sorted keys, slices become arrays and every other value becomes text.
func FromPlain(v any) (xtn.Element, error) {
	switch v := v.(type) {
	case nil:
		return xtn.NewText(""), nil
	case string:
		return xtn.NewText(v), nil
	case []any:
		arr := xtn.NewArray()
		for _, c := range v {
			el, err := FromPlain(c)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, el)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		obj := xtn.NewObject()
		for _, k := range keys {
			el, err := FromPlain(v[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, el)
		}
		return obj, nil
	case []map[string]any:
		arr := xtn.NewArray()
		for _, c := range v {
			el, err := FromPlain(c)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, el)
		}
		return arr, nil
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, c := range v {
			m[fmt.Sprint(k)] = c
		}
		return FromPlain(m)
	case []byte:
		return nil, errors.Errorf("binary values are not supported")
	}
	return xtn.NewText(fmt.Sprint(v)), nil
}
