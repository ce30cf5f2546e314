package xtn

// Equal reports whether a and b hold the same keys, values, nesting and
// comments. Source positions and ForceMultiline are ignored.
func Equal(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ha, hb := a.Head(), b.Head()
	if !equalComments(ha.CommentsAbove, hb.CommentsAbove) || !equalComments(ha.CommentsBelow, hb.CommentsBelow) {
		return false
	}
	switch a := a.(type) {
	case *Text:
		b, ok := b.(*Text)
		return ok && a.Value == b.Value
	case *Array:
		b, ok := b.(*Array)
		if !ok || !equalInner(&a.Inner, &b.Inner) || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		b, ok := b.(*Object)
		if !ok || !equalInner(&a.Inner, &b.Inner) || len(a.members) != len(b.members) {
			return false
		}
		for i, m := range a.members {
			if m.Key != b.members[i].Key || !Equal(m.Value, b.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func equalInner(a, b *Inner) bool {
	return equalComments(a.CommentsInnerTop, b.CommentsInnerTop) &&
		equalComments(a.CommentsInnerBottom, b.CommentsInnerBottom)
}

func equalComments(a, b []Comment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Value != b[i].Value || a[i].Prefix != b[i].Prefix {
			return false
		}
	}
	return true
}
