package ml

import (
	"fmt"
	"math"
	"math/rand"

	coinmath "github.com/Suad0/trading4j-sub002/internal/math"
	"github.com/drakos74/go-ex-machina/xmath"
)

const (
	// log variance clamp, keeps exp(logVar) finite
	logVarMin = -10.0
	logVarMax = 10.0
	// epsilon floor for the layer normalization standard deviation
	normEps = 1e-8
)

// Weights holds all learned tensors of the cell.
// Shapes are fixed at construction from (inputSize, hiddenSize, latentSize)
// and never resized.
type Weights struct {
	// gate matrices : input-to-hidden and hidden-to-hidden pairs
	Wi xmath.Matrix `json:"wi"`
	Ui xmath.Matrix `json:"ui"`
	Wf xmath.Matrix `json:"wf"`
	Uf xmath.Matrix `json:"uf"`
	Wo xmath.Matrix `json:"wo"`
	Uo xmath.Matrix `json:"uo"`
	Wc xmath.Matrix `json:"wc"`
	Uc xmath.Matrix `json:"uc"`
	Bi xmath.Vector `json:"bi"`
	Bf xmath.Vector `json:"bf"`
	Bo xmath.Vector `json:"bo"`
	Bc xmath.Vector `json:"bc"`
	// latent posterior projections
	Wmu xmath.Matrix `json:"wmu"`
	Bmu xmath.Vector `json:"bmu"`
	Wlv xmath.Matrix `json:"wlv"`
	Blv xmath.Vector `json:"blv"`
	// memory mixing gate
	Wmix xmath.Matrix `json:"wmix"`
	Bmix xmath.Vector `json:"bmix"`
	// layer normalization affine
	Gamma xmath.Vector `json:"gamma"`
	Shift xmath.Vector `json:"shift"`
	// fixed random projection coupling the latent back into the hidden state
	Wenh xmath.Matrix `json:"wenh"`
	// output head
	Why xmath.Vector `json:"why"`
	By  float64      `json:"by"`
}

// NewWeights creates the weight tensors for the given config,
// initialised from the given random source.
func NewWeights(cfg Config, rnd *rand.Rand) *Weights {
	in := cfg.InputSize
	hidden := cfg.HiddenSize
	latent := cfg.LatentSize
	w := &Weights{
		Wi:    heMat(rnd, hidden, in),
		Ui:    heMat(rnd, hidden, hidden),
		Wf:    heMat(rnd, hidden, in),
		Uf:    heMat(rnd, hidden, hidden),
		Wo:    heMat(rnd, hidden, in),
		Uo:    heMat(rnd, hidden, hidden),
		Wc:    heMat(rnd, hidden, in),
		Uc:    heMat(rnd, hidden, hidden),
		Bi:    xmath.Vec(hidden),
		Bf:    xmath.Vec(hidden),
		Bo:    xmath.Vec(hidden),
		Bc:    xmath.Vec(hidden),
		Wmu:   heMat(rnd, latent, hidden),
		Bmu:   xmath.Vec(latent),
		Wlv:   heMat(rnd, latent, hidden),
		Blv:   xmath.Vec(latent),
		Wmix:  heMat(rnd, hidden, hidden),
		Bmix:  xmath.Vec(hidden),
		Gamma: ones(hidden),
		Shift: xmath.Vec(hidden),
		Wenh:  heMat(rnd, hidden, latent),
		Why:   heVec(rnd, hidden),
		By:    0,
	}
	return w
}

// Check verifies that the weight shapes match the given config.
func (w *Weights) Check(cfg Config) error {
	in := cfg.InputSize
	hidden := cfg.HiddenSize
	latent := cfg.LatentSize
	for name, m := range map[string]struct {
		mat        xmath.Matrix
		rows, cols int
	}{
		"wi":   {w.Wi, hidden, in},
		"ui":   {w.Ui, hidden, hidden},
		"wf":   {w.Wf, hidden, in},
		"uf":   {w.Uf, hidden, hidden},
		"wo":   {w.Wo, hidden, in},
		"uo":   {w.Uo, hidden, hidden},
		"wc":   {w.Wc, hidden, in},
		"uc":   {w.Uc, hidden, hidden},
		"wmu":  {w.Wmu, latent, hidden},
		"wlv":  {w.Wlv, latent, hidden},
		"wmix": {w.Wmix, hidden, hidden},
		"wenh": {w.Wenh, hidden, latent},
	} {
		if len(m.mat) != m.rows {
			return fmt.Errorf("%s must have %d rows: %d", name, m.rows, len(m.mat))
		}
		for _, row := range m.mat {
			if len(row) != m.cols {
				return fmt.Errorf("%s must have %d cols: %d", name, m.cols, len(row))
			}
		}
	}
	for name, v := range map[string]struct {
		vec xmath.Vector
		dim int
	}{
		"bi":    {w.Bi, hidden},
		"bf":    {w.Bf, hidden},
		"bo":    {w.Bo, hidden},
		"bc":    {w.Bc, hidden},
		"bmu":   {w.Bmu, latent},
		"blv":   {w.Blv, latent},
		"bmix":  {w.Bmix, hidden},
		"gamma": {w.Gamma, hidden},
		"shift": {w.Shift, hidden},
		"why":   {w.Why, hidden},
	} {
		if len(v.vec) != v.dim {
			return fmt.Errorf("%s must have size %d: %d", name, v.dim, len(v.vec))
		}
	}
	return nil
}

// Cell computes one recurrence step of the stochastic extended lstm.
type Cell struct {
	cfg Config
	w   *Weights
	rnd *rand.Rand
}

// NewCell creates a cell for the given config and weights.
// The random source drives the latent sampling during training.
func NewCell(cfg Config, w *Weights, rnd *rand.Rand) *Cell {
	return &Cell{
		cfg: cfg,
		w:   w,
		rnd: rnd,
	}
}

// Weights exposes the cell weights for training and persistence.
func (c *Cell) Weights() *Weights {
	return c.w
}

// Forward computes the next state from the given input batch and the previous state.
// Mismatched batch sizes are a programming error and panic.
// Non-finite results are reported as an error, so that the caller can discard
// the step instead of feeding a poisoned state into the next one.
func (c *Cell) Forward(input xmath.Matrix, prev *State, training bool) (*State, error) {
	if len(input) != prev.Batch() {
		panic(fmt.Sprintf("input batch must match state batch '%d' vs '%d'", len(input), prev.Batch()))
	}
	next := NewState(len(input), c.cfg.HiddenSize, c.cfg.LatentSize)
	for r := range input {
		tr, err := c.step(input[r], prev.Hidden[r], prev.Cell[r], training)
		if err != nil {
			return nil, fmt.Errorf("step failed at batch row %d: %w", r, err)
		}
		next.Hidden[r] = tr.hidden
		next.Cell[r] = tr.cell
		next.NormCell[r] = tr.norm
		next.LatentMean[r] = tr.mu
		next.LatentLogVar[r] = tr.logVar
		next.Latent[r] = tr.latent
		next.Enhancement[r] = tr.enhancement
	}
	return next, nil
}

// trace keeps the intermediate results of a single step for one batch row.
// the training loop needs the activated gates for the gradient computation.
type trace struct {
	in, forget, out, cand xmath.Vector
	cell, norm            xmath.Vector
	// normRaw is the normalized cell state before the affine rescale
	normRaw             xmath.Vector
	mu, logVar, latent  xmath.Vector
	enhancement, hidden xmath.Vector
	prevCell            xmath.Vector
}

// step runs the recurrence for a single batch row.
func (c *Cell) step(x, h, cPrev xmath.Vector, training bool) (trace, error) {
	xmath.MustHaveSize(x, c.cfg.InputSize)

	tr := trace{prevCell: cPrev}
	tr.in = c.gate(c.w.Wi, c.w.Ui, c.w.Bi, x, h, coinmath.Sigmoid)
	tr.forget = c.gate(c.w.Wf, c.w.Uf, c.w.Bf, x, h, coinmath.Sigmoid)
	tr.out = c.gate(c.w.Wo, c.w.Uo, c.w.Bo, x, h, coinmath.Sigmoid)
	tr.cand = c.gate(c.w.Wc, c.w.Uc, c.w.Bc, x, h, math.Tanh)

	// cell state update
	cell := tr.forget.X(cPrev).Add(tr.in.X(tr.cand))
	if c.cfg.MemoryMixing {
		mix := c.w.Wmix.Prod(h).Add(c.w.Bmix).Op(coinmath.Sigmoid)
		cell = mix.X(cPrev).Add(mix.Op(func(g float64) float64 { return 1 - g }).X(cell))
	}
	tr.cell = cell

	tr.normRaw = cell
	tr.norm = cell
	if c.cfg.LayerNormalization {
		tr.normRaw = normalize(cell)
		tr.norm = tr.normRaw.X(c.w.Gamma).Add(c.w.Shift)
	}

	// latent posterior from the previous hidden state :
	// the latent characterises the uncertainty carried into this step
	tr.mu = c.w.Wmu.Prod(h).Add(c.w.Bmu)
	tr.logVar = c.w.Wlv.Prod(h).Add(c.w.Blv).Op(clampLogVar)

	// reparameterized sample during training, posterior mean at inference
	tr.latent = tr.mu
	if training {
		noise := xmath.Vec(len(tr.mu))
		for i := range noise {
			noise[i] = c.rnd.NormFloat64()
		}
		tr.latent = tr.mu.Add(tr.logVar.Op(func(lv float64) float64 {
			return math.Exp(0.5 * lv)
		}).X(noise))
	}

	tr.enhancement = c.w.Wenh.Prod(tr.latent).Mult(c.cfg.Beta)
	tr.hidden = tr.out.X(tr.norm.Op(math.Tanh)).Add(tr.enhancement)

	if !finiteVec(tr.hidden) || !finiteVec(tr.cell) {
		return tr, fmt.Errorf("non-finite state")
	}
	return tr, nil
}

// gate computes one activated gate vector.
// With exponential gating the pre-activation is amplified by a sigmoid of itself,
// letting the gate magnitude scale supra-linearly with input strength.
func (c *Cell) gate(w, u xmath.Matrix, b xmath.Vector, x, h xmath.Vector, activation func(float64) float64) xmath.Vector {
	lin := w.Prod(x).Add(u.Prod(h)).Add(b)
	if c.cfg.ExponentialGating {
		scale := c.cfg.GatingScale
		lin = lin.Op(func(l float64) float64 {
			return l * coinmath.Sigmoid(l*scale)
		})
	}
	return lin.Op(activation)
}

// normalize centers and scales the vector across its own dimension.
func normalize(v xmath.Vector) xmath.Vector {
	mean := v.Sum() / float64(len(v))
	var dSquared float64
	for _, f := range v {
		dSquared += (f - mean) * (f - mean)
	}
	std := math.Sqrt(dSquared/float64(len(v))) + normEps
	return v.Op(func(f float64) float64 {
		return (f - mean) / std
	})
}

func clampLogVar(lv float64) float64 {
	if lv < logVarMin {
		return logVarMin
	}
	if lv > logVarMax {
		return logVarMax
	}
	return lv
}

func finiteVec(v xmath.Vector) bool {
	for _, f := range v {
		if !coinmath.IsFinite(f) {
			return false
		}
	}
	return true
}

func heMat(rnd *rand.Rand, n, m int) xmath.Matrix {
	w := xmath.Mat(n).Of(m)
	scale := math.Sqrt(2.0 / float64(m))
	for i := range w {
		for j := range w[i] {
			w[i][j] = rnd.NormFloat64() * scale
		}
	}
	return w
}

func heVec(rnd *rand.Rand, n int) xmath.Vector {
	v := xmath.Vec(n)
	scale := math.Sqrt(2.0 / float64(n))
	for i := range v {
		v[i] = rnd.NormFloat64() * scale
	}
	return v
}

func ones(n int) xmath.Vector {
	v := xmath.Vec(n)
	for i := range v {
		v[i] = 1.0
	}
	return v
}
