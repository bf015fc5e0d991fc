package service

import "encoding/json"

// Optional distinguishes the three states a partial-update field can be in:
// absent (Set false), explicitly null (Set true, Value nil), and present
// (Set true, Value non-nil). encoding/json only invokes UnmarshalJSON for
// keys present in the payload, which is what makes the absent state work.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that is set to explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
