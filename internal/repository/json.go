package repository

import "encoding/json"

// Tag and image lists are stored as ordered JSON arrays so that a post's
// tag order survives round trips; the popular-tags aggregation depends on
// encounter order for its tie-break.

func marshalStrings(ss []string) []byte {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return b
}

func unmarshalStrings(b []byte) []string {
	var ss []string
	if err := json.Unmarshal(b, &ss); err != nil || ss == nil {
		return []string{}
	}
	return ss
}
