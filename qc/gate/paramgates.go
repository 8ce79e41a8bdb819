package gate

// Parametric gates carry their own Param slots and so, unlike the fixed
// gates in builtin.go, are constructed per use rather than shared as
// singletons.

// rot1 is a single-qubit gate with one rotation angle (Rx, Ry, Rz, U1).
type rot1 struct {
	name   string
	params []Param
}

func (g *rot1) Name() string       { return g.name }
func (g *rot1) QubitSpan() int     { return 1 }
func (g *rot1) DrawSymbol() string { return g.name }
func (g *rot1) Targets() []int     { return []int{0} }
func (g *rot1) Controls() []int    { return []int{} }
func (g *rot1) Params() []Param    { return g.params }

// Rx returns an X-axis rotation by theta.
func Rx(theta Param) Gate { return &rot1{"RX", []Param{theta}} }

// Ry returns a Y-axis rotation by theta.
func Ry(theta Param) Gate { return &rot1{"RY", []Param{theta}} }

// Rz returns a Z-axis rotation by theta.
func Rz(theta Param) Gate { return &rot1{"RZ", []Param{theta}} }

// U1 returns the single-parameter phase gate diag(1, e^{i*lambda}).
func U1(lambda Param) Gate { return &rot1{"U1", []Param{lambda}} }

// U3 is the general single-qubit unitary U3(theta, phi, lambda).
type u3rot struct{ params []Param }

func (g *u3rot) Name() string       { return "U3" }
func (g *u3rot) QubitSpan() int     { return 1 }
func (g *u3rot) DrawSymbol() string { return "U3" }
func (g *u3rot) Targets() []int     { return []int{0} }
func (g *u3rot) Controls() []int    { return []int{} }
func (g *u3rot) Params() []Param    { return g.params }

func U3(theta, phi, lambda Param) Gate { return &u3rot{[]Param{theta, phi, lambda}} }

// crot1 is a controlled single-parameter rotation (CRZ, CPhase).
type crot1 struct {
	name   string
	params []Param
}

func (g *crot1) Name() string       { return g.name }
func (g *crot1) QubitSpan() int     { return 2 }
func (g *crot1) DrawSymbol() string { return g.name }
func (g *crot1) Targets() []int     { return []int{1} }
func (g *crot1) Controls() []int    { return []int{0} }
func (g *crot1) Params() []Param    { return g.params }

// CRZ is a controlled Z-axis rotation by theta.
func CRZ(theta Param) Gate { return &crot1{"CRZ", []Param{theta}} }

// CPhase is a controlled phase gate by theta.
func CPhase(theta Param) Gate { return &crot1{"CPHASE", []Param{theta}} }
