package app

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/kegliz/qplay/internal/qservice"
	"github.com/kegliz/qplay/qc/circuit"
	"github.com/kegliz/qplay/qc/dag"
	"github.com/kegliz/qplay/qc/gate"
	"github.com/kegliz/qplay/qc/renderer"
	"github.com/kegliz/qplay/qc/session"
)

// CircuitRequest represents the structure for circuit execution requests
type CircuitRequest struct {
	Circuit struct {
		Qubits int `json:"qubits"`
		Gates  []struct {
			Type   string `json:"type"`
			Qubits []int  `json:"qubits"`
			Step   int    `json:"step"`
		} `json:"gates"`
	} `json:"circuit"`
	Backend string `json:"backend"`
	Shots   int    `json:"shots"`
}

// CircuitResponse represents the structure for circuit execution responses
type CircuitResponse struct {
	Measurements  map[string]int    `json:"measurements,omitempty"`
	StateVector   []complex128      `json:"state_vector,omitempty"`
	CircuitImage  string           `json:"circuit_image,omitempty"`
	ExecutionTime float64          `json:"execution_time,omitempty"`
	Backend       string           `json:"backend"`
	Shots         int              `json:"shots"`
}

var badRequestErrorMsg = "Bad Request - please contact the administrator"
var internalServerErrorMsg = "Internal Server Error - please contact the administrator"

// RootHandler is the handler for the / endpoint
func (a *appServer) RootHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving root endpoint")

	c.HTML(http.StatusOK, "index.tmpl", gin.H{"title": "Quantum Playground DEV"})
}

// HealthHandler is the handler for the /health endpoint
func (a *appServer) HealthHandler(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving health endpoint")
	c.String(http.StatusOK, "OK")
}

// ExecuteCircuit is the handler for the /api/execute endpoint
func (a *appServer) ExecuteCircuit(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving circuit execution endpoint")

	var req CircuitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Error().Err(err).Msg("binding JSON failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// Validate request
	if req.Circuit.Qubits <= 0 || req.Circuit.Qubits > 10 {
		l.Error().Int("qubits", req.Circuit.Qubits).Msg("invalid qubit count")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid qubit count (1-10 allowed)"})
		return
	}

	if req.Shots <= 0 || req.Shots > 10000 {
		req.Shots = 1000 // Default value
	}

	if req.Backend == "" {
		req.Backend = "qsim" // Default backend
	}

	// Build circuit from request
	d, err := a.buildDAGFromRequest(&req)
	if err != nil {
		l.Error().Err(err).Msg("building circuit failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to build circuit: " + err.Error()})
		return
	}

	// Execute circuit through the session dispatcher (the same
	// qc/session.Table/qc/backend.Pool pipeline cmd/cli drives).
	result, err := a.executeCircuit(d, req.Backend, req.Shots)
	if err != nil {
		l.Error().Err(err).Str("backend", req.Backend).Msg("circuit execution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Circuit execution failed: " + err.Error()})
		return
	}

	// Generate circuit image
	circuitImage, err := a.generateCircuitImage(circuit.FromDAG(d))
	if err != nil {
		l.Warn().Err(err).Msg("failed to generate circuit image")
		// Continue without image - not critical
	}

	// Prepare response
	response := CircuitResponse{
		Measurements: result,
		CircuitImage: circuitImage,
		Backend:      req.Backend,
		Shots:        req.Shots,
	}

	c.JSON(http.StatusOK, response)
}

// buildDAGFromRequest converts the JSON request into a validated DAG.
func (a *appServer) buildDAGFromRequest(req *CircuitRequest) (*dag.DAG, error) {
	d := dag.New(req.Circuit.Qubits, req.Circuit.Qubits)

	// Sort gates by step to ensure proper order.
	gatesByStep := make(map[int][]struct {
		Type   string `json:"type"`
		Qubits []int  `json:"qubits"`
		Step   int    `json:"step"`
	})
	maxStep := 0
	for _, g := range req.Circuit.Gates {
		gatesByStep[g.Step] = append(gatesByStep[g.Step], g)
		if g.Step > maxStep {
			maxStep = g.Step
		}
	}

	hasMeasurements := false
	for step := 0; step <= maxStep; step++ {
		for _, g := range gatesByStep[step] {
			if g.Type == "MEASURE" {
				hasMeasurements = true
				if len(g.Qubits) != 1 {
					return nil, fmt.Errorf("MEASURE requires exactly 1 qubit")
				}
				if err := d.AddMeasure(g.Qubits[0], g.Qubits[0]); err != nil {
					return nil, err
				}
				continue
			}
			gg, err := gate.Factory(g.Type)
			if err != nil {
				return nil, fmt.Errorf("unsupported gate type: %s", g.Type)
			}
			if err := d.AddGate(gg, g.Qubits); err != nil {
				return nil, err
			}
		}
	}

	if !hasMeasurements {
		for i := 0; i < req.Circuit.Qubits; i++ {
			if err := d.AddMeasure(i, i); err != nil {
				return nil, err
			}
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// executeCircuit runs the circuit on the specified backend via a
// dedicated session.Table cell, one per request (spec.md §5's
// cell-granularity concurrency model).
func (a *appServer) executeCircuit(d *dag.DAG, backendName string, shots int) (map[string]int, error) {
	row := int(atomic.AddInt64(&a.reqCounter, 1))
	a.sessions.Set(row, 0, session.RunConfig{
		NumQubits: d.Qubits(),
		Shots:     shots,
		Backend:   backendName,
		Source:    d,
	})
	if err := a.sessions.RunAt(row, 0); err != nil {
		return nil, err
	}
	cell, _ := a.sessions.Get(row, 0)
	return map[string]int(cell.Result.RawCounts), nil
}

// generateCircuitImage creates a PNG image of the circuit
func (a *appServer) generateCircuitImage(circ circuit.Circuit) (string, error) {
	// Create renderer
	r := renderer.NewRenderer(60) // 60 DPI for web display

	// Render circuit to image
	img, err := r.Render(circ)
	if err != nil {
		return "", fmt.Errorf("failed to render circuit: %w", err)
	}

	// Create a buffer to capture the PNG
	var buf bytes.Buffer

	// Encode image as PNG to buffer
	err = png.Encode(&buf, img)
	if err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	// Encode as base64
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return encoded, nil
}

// CreateCircuit is the handler for the /api/qprogs endpoint
func (a *appServer) CreateCircuit(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving circuit creation endpoint")
	var params qservice.ProgramValue
	if err := c.ShouldBindJSON(&params); err != nil {
		l.Error().Err(err).Msg("binding json failed")
		c.String(http.StatusBadRequest, badRequestErrorMsg)
		return
	}
	id, err := a.qs.SaveProgram(l, &params)
	if err != nil {
		l.Error().Err(err).Msg("saving circuit failed")
		c.String(http.StatusInternalServerError, internalServerErrorMsg)
		return
	}
	c.PureJSON(http.StatusOK, qservice.ProgramIDValue{ID: id})
}

// RenderCircuit is the handler for the /api/qprogs/:id/img endpoint
func (a *appServer) RenderCircuit(c *gin.Context) {
	l, err := a.getLoggerFromContext(c)
	if err != nil {
		panic("logger not found in context")
	}
	l.Debug().Msg("serving rendering circuit img endpoint")
	id := c.Param("id")
	img, err := a.qs.RenderCircuit(l, id)
	if err != nil {
		l.Error().Err(err).Msg("rendering circuit failed")
		c.String(http.StatusInternalServerError, internalServerErrorMsg)
		return
	}
	c.Header("Content-Type", "image/png")
	png.Encode(c.Writer, img)
	c.Status(http.StatusOK)
}
