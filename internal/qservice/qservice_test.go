package qservice

import (
	"testing"

	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/stretchr/testify/require"
)

type storeMock struct {
	saveProgramResultID string
	saveProgramError    error
	saveProgramCallCount int
	getProgramResult     *dag.DAG
	getProgramError      error
	getProgramCallCount  int
}

type errProgramStore struct{}

func (errProgramStore) Error() string { return "program store error" }

func (s *storeMock) SaveProgram(d *dag.DAG) (string, error) {
	s.saveProgramCallCount++
	return s.saveProgramResultID, s.saveProgramError
}

func (s *storeMock) GetProgram(id string) (*dag.DAG, error) {
	s.getProgramCallCount++
	return s.getProgramResult, s.getProgramError
}

func testLogger() *logger.Logger {
	return logger.NewLogger(logger.LoggerOptions{Debug: true})
}

func TestNewService(t *testing.T) {
	svc := NewService(ServiceOptions{Logger: testLogger(), Store: &storeMock{}})
	require.NotNil(t, svc)
}

func TestSaveProgram(t *testing.T) {
	sm := &storeMock{saveProgramResultID: "id"}
	svc := NewService(ServiceOptions{Logger: testLogger(), Store: sm})

	pv := &ProgramValue{NumQubits: 1, NumClbits: 1}
	id, err := svc.SaveProgram(testLogger(), pv)
	require.NoError(t, err)
	require.Equal(t, "id", id)
	require.Equal(t, 1, sm.saveProgramCallCount)
}

func TestSaveProgramError(t *testing.T) {
	sm := &storeMock{saveProgramError: errProgramStore{}}
	svc := NewService(ServiceOptions{Logger: testLogger(), Store: sm})

	pv := &ProgramValue{NumQubits: 1, NumClbits: 1}
	id, err := svc.SaveProgram(testLogger(), pv)
	require.ErrorIs(t, err, errProgramStore{})
	require.Equal(t, "", id)
	require.Equal(t, 1, sm.saveProgramCallCount)
}

func TestSaveProgramRejectsUnknownGate(t *testing.T) {
	svc := NewService(ServiceOptions{Logger: testLogger(), Store: NewProgramStore()})

	pv := &ProgramValue{
		NumQubits: 1,
		NumClbits: 1,
		Gates: []struct {
			Type   string `json:"type"`
			Qubits []int  `json:"qubits"`
		}{
			{Type: "NOT-A-GATE", Qubits: []int{0}},
		},
	}
	_, err := svc.SaveProgram(testLogger(), pv)
	require.Error(t, err)
}
