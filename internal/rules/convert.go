package rules

// Convert maps a rule into the current dialect. Current-dialect trees pass
// through unchanged. A legacy tree converts only when every node in it has a
// faithful current-dialect form: course, non-empty any, non-empty all, or an
// already-current node. countAtLeast and unrecognized shapes do not convert.
func Convert(rule Rule) (*Node, bool) {
	if rule.Current != nil {
		return rule.Current, true
	}
	if rule.Legacy == nil {
		return nil, false
	}
	return convertLegacy(rule.Legacy)
}

func convertLegacy(n *LegacyNode) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case LegacyTyped:
		return n.Typed, n.Typed != nil
	case LegacyCourse:
		return CourseSet(n.Course), true
	case LegacyAny:
		children, ok := convertChildren(n.Children)
		if !ok {
			return nil, false
		}
		return NOf(1, children...), true
	case LegacyAll:
		children, ok := convertChildren(n.Children)
		if !ok {
			return nil, false
		}
		return AllOf(children...), true
	default:
		return nil, false
	}
}

func convertChildren(children []*LegacyNode) ([]*Node, bool) {
	if len(children) == 0 {
		return nil, false
	}
	out := make([]*Node, 0, len(children))
	for _, child := range children {
		converted, ok := convertLegacy(child)
		if !ok {
			return nil, false
		}
		out = append(out, converted)
	}
	return out, true
}
