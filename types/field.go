package types

import "encoding/json"

// Field is a JSON value that distinguishes "absent" from "present".
// A field that never appears in the payload has Set == false; an explicit
// null decodes with Set == true and the zero Value. Used for partial
// updates where null means "clear this value".
type Field[T any] struct {
	Set   bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}
