package model

// Resolve implements the inherit-if-unset rule shared by shot creation
// and schedule synchronization: the child's value wins when it is
// non-empty, otherwise the parent's value is used, otherwise def.  The
// result is always a fresh copy so callers never alias the parent.
func Resolve(child, parent, def []string) []string {
	switch {
	case len(child) > 0:
		return clone(child)
	case len(parent) > 0:
		return clone(parent)
	default:
		return clone(def)
	}
}

// ResolveString is Resolve for scalar string fields.
func ResolveString(child, parent, def string) string {
	switch {
	case child != "":
		return child
	case parent != "":
		return parent
	default:
		return def
	}
}

func clone(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
