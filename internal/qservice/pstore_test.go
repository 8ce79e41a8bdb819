package qservice

import (
	"testing"

	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/stretchr/testify/assert"
)

// test programStore SaveProgram and GetProgram
func TestProgramStore(t *testing.T) {
	assert := assert.New(t)

	ps := NewProgramStore()

	// program with 1 qubit, no gates
	p1 := dag.New(1, 1)

	// program with 1 qubit, one H gate
	p2 := dag.New(1, 1)
	assert.NoError(p2.AddGate(gate.H(), []int{0}))

	// program with 2 qubits, no gates
	p3 := dag.New(2, 2)

	// program with 2 qubits, one H gate
	p4 := dag.New(2, 2)
	assert.NoError(p4.AddGate(gate.H(), []int{0}))

	// program with 2 qubits, H and X on separate qubits
	p5 := dag.New(2, 2)
	assert.NoError(p5.AddGate(gate.H(), []int{0}))
	assert.NoError(p5.AddGate(gate.X(), []int{1}))

	id1, err := ps.SaveProgram(p1)
	assert.NoError(err, "saving program failed")
	id2, err := ps.SaveProgram(p2)
	assert.NoError(err, "saving program failed")
	id3, err := ps.SaveProgram(p3)
	assert.NoError(err, "saving program failed")
	id4, err := ps.SaveProgram(p4)
	assert.NoError(err, "saving program failed")
	id5, err := ps.SaveProgram(p5)
	assert.NoError(err, "saving program failed")

	d, err := ps.GetProgram(id1)
	assert.NoError(err, "getting program failed")
	assert.Equal(p1, d, "program mismatch")
	d, err = ps.GetProgram(id2)
	assert.NoError(err, "getting program failed")
	assert.Equal(p2, d, "program mismatch")
	d, err = ps.GetProgram(id3)
	assert.NoError(err, "getting program failed")
	assert.Equal(p3, d, "program mismatch")
	d, err = ps.GetProgram(id4)
	assert.NoError(err, "getting program failed")
	assert.Equal(p4, d, "program mismatch")
	d, err = ps.GetProgram(id5)
	assert.NoError(err, "getting program failed")
	assert.Equal(p5, d, "program mismatch")

	d, err = ps.GetProgram("invalid")
	assert.Error(err, "getting program with invalid id should fail")
	assert.Nil(d, "program should be nil")
}
