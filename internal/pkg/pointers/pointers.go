// Package pointers builds pointers to literals for optional request fields.
package pointers

func Int(v int) *int          { return &v }
func String(v string) *string { return &v }
