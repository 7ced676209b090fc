package trajectory

import (
	"fmt"
	"strings"
)

// Super-key separators: pairs are "column=value" joined by KeySeparator.
const (
	KeySeparator  = ":"
	pairSeparator = "="
)

// ConstructKey joins columns and values as "c1=v1:c2=v2" in column order.
func ConstructKey(columns, values []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts[i] = c + pairSeparator + v
	}
	return strings.Join(parts, KeySeparator)
}

// DeconstructKey recovers the column names and values of a super key in
// their original order.
func DeconstructKey(key string) (columns, values []string, err error) {
	parts := strings.Split(key, KeySeparator)
	columns = make([]string, 0, len(parts))
	values = make([]string, 0, len(parts))
	for _, p := range parts {
		c, v, ok := strings.Cut(p, pairSeparator)
		if !ok {
			return nil, nil, fmt.Errorf("malformed key component %q in %q", p, key)
		}
		columns = append(columns, c)
		values = append(values, v)
	}
	return columns, values, nil
}
