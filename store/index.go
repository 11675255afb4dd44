package store

// ResolveIndex finds the dataset holding row labels for a group.
//
// Precedence, first match wins:
//  1. an "_index" attribute on the group naming the index dataset,
//  2. a child dataset literally named "_index",
//  3. a child dataset literally named "index".
//
// Returns ErrMissingIndex when none applies.
func ResolveIndex(s Store, group string) (string, error) {
	if v, ok := s.Attr(group, "_index"); ok {
		if name, ok := AttrString(v); ok && name != "" {
			return name, nil
		}
	}
	for _, name := range []string{"_index", "index"} {
		p := join(group, name)
		if s.Exists(p) && !s.IsGroup(p) {
			return name, nil
		}
	}
	return "", &ErrMissingIndex{Group: group}
}

// IndexStrings resolves and reads the index dataset of a group.
func IndexStrings(s Store, group string) ([]string, error) {
	name, err := ResolveIndex(s, group)
	if err != nil {
		return nil, err
	}
	return readColumnStrings(s, join(group, name))
}

func join(group, name string) string {
	if group == "" || group == "/" {
		return name
	}
	return group + "/" + name
}
