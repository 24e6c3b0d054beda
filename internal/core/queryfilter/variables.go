package queryfilter

import "encoding/json"

// Variables is the flat variable map handed to the list query
type Variables map[string]any

// Key is a canonical encoding; equal keys mean an equal query
func (v Variables) Key() string {
	// encoding/json sorts map keys
	b, err := json.Marshal(map[string]any(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// Int reads an integer variable
func (v Variables) Int(key string) int {
	n, _ := v[key].(int)
	return n
}
