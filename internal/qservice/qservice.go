package qservice

import (
	"image"

	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/kegliz/qplay/qc/renderer"
)

type (
	// ProgramValue is the wire shape of a saved-circuit request: a flat
	// qubit/classical-bit count plus an ordered gate list, mirroring the
	// gate vocabulary internal/app's CircuitRequest accepts for
	// /api/execute.
	ProgramValue struct {
		NumQubits int `json:"num_qubits"`
		NumClbits int `json:"num_clbits"`
		Gates     []struct {
			Type   string `json:"type"`
			Qubits []int  `json:"qubits"`
		} `json:"gates"`
	}
	ProgramIDValue struct {
		ID string `json:"id"`
	}

	RenderResult struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Image   string `json:"image"`
	}

	// ServiceOptions are options for constructing a service
	ServiceOptions struct {
		Logger *logger.Logger
		Store  ProgramStore
	}

	Service interface {
		RenderCircuit(log *logger.Logger, id string) (*image.RGBA, error)
		SaveProgram(log *logger.Logger, pv *ProgramValue) (string, error)
	}

	service struct {
		store ProgramStore

		logger *logger.Logger
		r      renderer.GGPNG
	}
)

// NewService creates a new service.
func NewService(opts ServiceOptions) Service {
	if opts.Logger == nil {
		opts.Logger = logger.NewLogger(logger.LoggerOptions{
			Debug: true,
		})
	}
	if opts.Store == nil {
		opts.Store = NewProgramStore()
	}
	s := service{
		logger: opts.Logger,
		store:  opts.Store,
		r:      renderer.NewRenderer(60),
	}
	return &s
}

// RenderCircuit implements Service.
func (s *service) RenderCircuit(l *logger.Logger, id string) (*image.RGBA, error) {
	l.Debug().Str("id", id).Msg("rendering saved circuit")
	d, err := s.store.GetProgram(id)
	if err != nil {
		return nil, err
	}
	img, err := s.r.Render(circuit.FromDAG(d))
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	converted := image.NewRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			converted.Set(x, y, img.At(x, y))
		}
	}
	return converted, nil
}

// SaveProgram implements Service.
func (s *service) SaveProgram(l *logger.Logger, pv *ProgramValue) (string, error) {
	l.Debug().Int("num_qubits", pv.NumQubits).Msg("saving program")
	d := dag.New(pv.NumQubits, pv.NumClbits)
	for _, g := range pv.Gates {
		gg, err := gate.Factory(g.Type)
		if err != nil {
			return "", err
		}
		if err := d.AddGate(gg, g.Qubits); err != nil {
			return "", err
		}
	}
	return s.store.SaveProgram(d)
}
