// Package patch はJSONの部分更新ボディを許可リストに照らしてデコードします。
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNotObject は本文がJSONオブジェクトでない場合に返されます。
	ErrNotObject = errors.New("body must be a JSON object")
	// ErrUnknownField は許可リストにないキーが含まれる場合に返されます。
	ErrUnknownField = errors.New("field is not allowed")
	// ErrInvalidValue は値の型が合わない、またはnullの場合に返されます。
	ErrInvalidValue = errors.New("invalid field value")
)

// FieldError は問題のあったキーを保持します。
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Decode は data のすべてのキーが allowed に含まれることを確認してから dst にデコードします。
// 1つでも不正なキーや値があれば dst に触れる前にエラーを返します。
// dst のフィールドはポインタにしておくと、省略されたキーを nil で判別できます。
func Decode(data []byte, allowed []string, dst any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return ErrNotObject
	}

	// キー順に検査してエラーを決定的にする
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return &FieldError{Field: k, Err: ErrUnknownField}
		}
		if bytes.Equal(bytes.TrimSpace(fields[k]), []byte("null")) {
			return &FieldError{Field: k, Err: ErrInvalidValue}
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &FieldError{Field: typeErr.Field, Err: ErrInvalidValue}
		}
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}
