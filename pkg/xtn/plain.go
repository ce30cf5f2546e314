package xtn

// Unmarshal parses data without tracking positions or comments and returns
// the document as plain values: string, []any and map[string]any. Every
// syntax error is fatal in this mode, including repeated keys.
func Unmarshal(data []byte) (map[string]any, error) {
	p := newParser(Segment(string(data)), false)
	if err := p.run(); err != nil {
		return nil, err
	}
	return Plain(p.root).(map[string]any), nil
}

// Plain converts el into plain values. Key order is lost.
func Plain(el Element) any {
	switch el := el.(type) {
	case *Text:
		return el.Value
	case *Array:
		out := make([]any, len(el.Elements))
		for i, child := range el.Elements {
			out[i] = Plain(child)
		}
		return out
	case *Object:
		out := make(map[string]any, len(el.members))
		for _, m := range el.members {
			out[m.Key] = Plain(m.Value)
		}
		return out
	}
	return nil
}
