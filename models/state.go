package models

import (
	"encoding/json"
	"time"
)

type StateKind uint8

const (
	StateActive StateKind = iota
	StateDeleted
)

// EntityState is the lifecycle of a soft-deletable row. The zero value is
// Active. It serializes as the deletion time, or null while active.
type EntityState struct {
	Kind      StateKind
	DeletedAt time.Time
}

func Deleted(at time.Time) EntityState {
	return EntityState{Kind: StateDeleted, DeletedAt: at}
}

// StateFromColumn maps a nullable deleted_at column onto a state.
func StateFromColumn(deletedAt *time.Time) EntityState {
	if deletedAt == nil {
		return EntityState{}
	}
	return Deleted(*deletedAt)
}

func (s EntityState) IsActive() bool { return s.Kind == StateActive }

func (s EntityState) MarshalJSON() ([]byte, error) {
	if s.IsActive() {
		return []byte("null"), nil
	}
	return json.Marshal(s.DeletedAt)
}
