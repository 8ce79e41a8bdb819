package qservice

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kegliz/qplay/qc/dag"
)

type (
	// ProgramStore is an interface for storing validated circuits keyed
	// by an opaque id, the same uuid+mutex-map shape qc/session.Table
	// uses for cell ids.
	ProgramStore interface {
		// SaveProgram stores a validated DAG and returns its id.
		SaveProgram(d *dag.DAG) (string, error)

		// GetProgram returns the DAG stored under id.
		GetProgram(id string) (*dag.DAG, error)
	}

	// programStore is an in-memory implementation of ProgramStore.
	programStore struct {
		programs map[string]*dag.DAG
		sync.RWMutex
	}
)

// NewProgramStore creates a new program store.
func NewProgramStore() ProgramStore {
	return &programStore{
		programs: make(map[string]*dag.DAG),
	}
}

// SaveProgram implements ProgramStore.
func (ps *programStore) SaveProgram(d *dag.DAG) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("program check failed: %w", err)
	}
	id := uuid.New().String()
	ps.Lock()
	ps.programs[id] = d
	ps.Unlock()
	return id, nil
}

// GetProgram implements ProgramStore.
func (ps *programStore) GetProgram(id string) (*dag.DAG, error) {
	ps.RLock()
	d, ok := ps.programs[id]
	ps.RUnlock()
	if !ok {
		return nil, fmt.Errorf("program with id %s not found", id)
	}
	return d, nil
}
