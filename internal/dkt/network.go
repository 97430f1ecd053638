package dkt

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// Defaults for the recurrent network shape.
const (
	DefaultHiddenSize = 32
	DefaultLayers     = 2
	DefaultSeed       = 42
)

// gruLayer holds the weights for one gated recurrent layer.
// Gate order throughout: update (z), reset (r), candidate (h).
type gruLayer struct {
	Wz, Wr, Wh [][]float64 // input → hidden
	Uz, Ur, Uh [][]float64 // hidden → hidden
	Bz, Br, Bh []float64
}

// Weights is the full parameter set of the network, serializable so a
// trained set can be loaded into either the in-process model or the
// sidecar.
type Weights struct {
	InputWidth int         `json:"input_width"`
	HiddenSize int         `json:"hidden_size"`
	NumSkills  int         `json:"num_skills"`
	Layers     []gruLayer  `json:"layers"`
	Wout       [][]float64 `json:"w_out"` // hidden → per-skill logits
	Bout       []float64   `json:"b_out"`
}

// Network is a multi-layer GRU with a sigmoid readout per tracked
// skill. Weights are fixed after construction, so a Network is safe for
// concurrent use.
type Network struct {
	w Weights
}

// NewNetwork builds a network with deterministic seeded weights. The
// same (inputWidth, hiddenSize, layers, seed) always produces identical
// weights, which keeps in-process and sidecar deployments in agreement.
func NewNetwork(inputWidth, hiddenSize, layers int, seed int64) (*Network, error) {
	if inputWidth <= 0 {
		return nil, fmt.Errorf("input width must be positive, got %d", inputWidth)
	}
	if hiddenSize <= 0 {
		hiddenSize = DefaultHiddenSize
	}
	if layers <= 0 {
		layers = DefaultLayers
	}

	rng := rand.New(rand.NewSource(seed))
	w := Weights{
		InputWidth: inputWidth,
		HiddenSize: hiddenSize,
		NumSkills:  inputWidth / 2,
	}

	in := inputWidth
	for l := 0; l < layers; l++ {
		w.Layers = append(w.Layers, gruLayer{
			Wz: randomMatrix(rng, hiddenSize, in),
			Wr: randomMatrix(rng, hiddenSize, in),
			Wh: randomMatrix(rng, hiddenSize, in),
			Uz: randomMatrix(rng, hiddenSize, hiddenSize),
			Ur: randomMatrix(rng, hiddenSize, hiddenSize),
			Uh: randomMatrix(rng, hiddenSize, hiddenSize),
			Bz: make([]float64, hiddenSize),
			Br: make([]float64, hiddenSize),
			Bh: make([]float64, hiddenSize),
		})
		in = hiddenSize
	}
	w.Wout = randomMatrix(rng, w.NumSkills, hiddenSize)
	w.Bout = make([]float64, w.NumSkills)

	return &Network{w: w}, nil
}

// LoadNetwork reads a trained weight file produced elsewhere.
func LoadNetwork(path string) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	var w Weights
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse weights: %w", err)
	}
	if err := w.validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	return &Network{w: w}, nil
}

func (w *Weights) validate() error {
	if w.InputWidth <= 0 || w.HiddenSize <= 0 || w.NumSkills <= 0 {
		return fmt.Errorf("non-positive dimension (input=%d hidden=%d skills=%d)",
			w.InputWidth, w.HiddenSize, w.NumSkills)
	}
	if len(w.Layers) == 0 {
		return fmt.Errorf("no recurrent layers")
	}
	if len(w.Wout) != w.NumSkills || len(w.Bout) != w.NumSkills {
		return fmt.Errorf("readout shape mismatch")
	}
	return nil
}

// HiddenSize returns the per-layer hidden vector width.
func (n *Network) HiddenSize() int {
	return n.w.HiddenSize
}

// NumSkills returns the number of per-skill outputs.
func (n *Network) NumSkills() int {
	return n.w.NumSkills
}

// Forward runs the encoded sequence through every layer and returns the
// per-skill mastery probabilities and the final hidden vector of the
// last layer. An empty sequence returns (nil, nil); callers handle the
// cold start themselves.
func (n *Network) Forward(inputs [][]float64) (probs []float64, hidden []float64) {
	if len(inputs) == 0 {
		return nil, nil
	}

	hiddens := make([][]float64, len(n.w.Layers))
	for l := range hiddens {
		hiddens[l] = make([]float64, n.w.HiddenSize)
	}

	for _, x := range inputs {
		layerIn := x
		for l := range n.w.Layers {
			hiddens[l] = n.w.Layers[l].step(layerIn, hiddens[l])
			layerIn = hiddens[l]
		}
	}

	last := hiddens[len(hiddens)-1]
	probs = make([]float64, n.w.NumSkills)
	for k := 0; k < n.w.NumSkills; k++ {
		probs[k] = sigmoid(dot(n.w.Wout[k], last) + n.w.Bout[k])
	}
	return probs, append([]float64(nil), last...)
}

// step advances one GRU cell: z and r gate the blend of the previous
// hidden state with the candidate activation.
func (g *gruLayer) step(x, h []float64) []float64 {
	size := len(h)
	next := make([]float64, size)
	rh := make([]float64, size)

	r := make([]float64, size)
	for i := 0; i < size; i++ {
		r[i] = sigmoid(dot(g.Wr[i], x) + dot(g.Ur[i], h) + g.Br[i])
		rh[i] = r[i] * h[i]
	}
	for i := 0; i < size; i++ {
		z := sigmoid(dot(g.Wz[i], x) + dot(g.Uz[i], h) + g.Bz[i])
		cand := math.Tanh(dot(g.Wh[i], x) + dot(g.Uh[i], rh) + g.Bh[i])
		next[i] = (1-z)*h[i] + z*cand
	}
	return next
}

func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	// Xavier-style scaling keeps activations away from gate saturation.
	scale := math.Sqrt(2.0 / float64(rows+cols))
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = rng.NormFloat64() * scale
		}
	}
	return m
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
