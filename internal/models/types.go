package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a JSON-encoded string array column. Stored as JSON text so
// the same model works on postgres and sqlite.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// Contains reports whether s is a member of the list
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Add appends s if not already present, preserving set semantics
func (l StringList) Add(s string) StringList {
	if l.Contains(s) {
		return l
	}
	return append(l, s)
}

// LikeMap is a JSON-encoded userID -> like count column
type LikeMap map[string]int

// Value implements driver.Valuer
func (m LikeMap) Value() (driver.Value, error) {
	if m == nil {
		m = LikeMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *LikeMap) Scan(value interface{}) error {
	if value == nil {
		*m = LikeMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into LikeMap", value)
	}
}

// Total returns the sum of per-user like counts
func (m LikeMap) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
