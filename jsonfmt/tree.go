package jsonfmt

// Accessors for the generic JSON tree (maps, slices and scalars as produced
// by a generic unmarshal). Missing or mistyped fields resolve to zero
// values; the catalog format leaves most fields optional.

func treeString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func treeObject(m map[string]any, key string) map[string]any {
	o, _ := m[key].(map[string]any)
	return o
}

func treeList(m map[string]any, key string) []any {
	l, _ := m[key].([]any)
	return l
}

func treeStrings(m map[string]any, key string) []string {
	list := treeList(m, key)
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i], _ = v.(string)
	}
	return out
}

// treeNumber reads a numeric field. Generic unmarshalling yields float64
// for every JSON number.
func treeNumber(m map[string]any, key string) float64 {
	n, _ := m[key].(float64)
	return n
}

func treeInt(m map[string]any, key string) int {
	return int(treeNumber(m, key))
}

func treeBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func treeHas(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
