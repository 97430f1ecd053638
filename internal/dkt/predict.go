package dkt

import "math"

// Prediction is the sequence model's output for one interaction
// sequence.
type Prediction struct {
	// SkillMastery maps each tracked skill to its estimated mastery
	// probability in [0,1].
	SkillMastery map[string]float64 `json:"skill_mastery"`

	// HiddenState is the recurrent model's final internal vector,
	// exposed only as an opaque value for diagnostics. Its components
	// carry no meaning outside the model that produced them.
	HiddenState []float64 `json:"hidden_state"`

	// Confidence is 0 at total uncertainty (every output at 0.5) and
	// approaches 1 as outputs saturate toward 0 or 1.
	Confidence float64 `json:"confidence"`

	// SequenceLength is the number of interactions that produced this
	// prediction.
	SequenceLength int `json:"sequence_length"`
}

// Model combines an encoder and a network into the Sequence Engine.
// It is stateless across calls: every prediction re-derives the hidden
// state from the full sequence, trading recomputation for crash-safety.
type Model struct {
	enc *Encoder
	net *Network
}

// NewModel wires an encoder and network together. The network's input
// width must match the encoder's.
func NewModel(enc *Encoder, net *Network) *Model {
	return &Model{enc: enc, net: net}
}

// Encoder returns the model's encoder.
func (m *Model) Encoder() *Encoder {
	return m.enc
}

// Predict runs the full interaction sequence through the network and
// returns per-skill mastery estimates. It never fails: an empty
// sequence yields the cold-start prediction of uniform 0.5 mastery,
// a zero hidden state, and confidence 0.5.
func (m *Model) Predict(steps []Step) Prediction {
	if len(steps) == 0 {
		return m.coldStart()
	}

	probs, hidden := m.net.Forward(m.enc.EncodeSequence(steps))

	mastery := make(map[string]float64, m.enc.NumSkills())
	for i, skill := range m.enc.Skills() {
		mastery[skill] = probs[i]
	}

	return Prediction{
		SkillMastery:   mastery,
		HiddenState:    hidden,
		Confidence:     entropyConfidence(probs),
		SequenceLength: len(steps),
	}
}

func (m *Model) coldStart() Prediction {
	mastery := make(map[string]float64, m.enc.NumSkills())
	for _, skill := range m.enc.Skills() {
		mastery[skill] = 0.5
	}
	return Prediction{
		SkillMastery: mastery,
		HiddenState:  make([]float64, m.net.HiddenSize()),
		Confidence:   0.5,
	}
}

// entropyConfidence maps the mastery vector to a scalar confidence:
// one minus the mean binary entropy, normalized so entropy is 1 at
// p=0.5. All outputs at 0.5 give confidence 0; saturated outputs give
// confidence approaching 1.
func entropyConfidence(probs []float64) float64 {
	if len(probs) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, p := range probs {
		sum += binaryEntropy(p)
	}
	conf := 1 - sum/float64(len(probs))
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

// binaryEntropy returns H(p) in bits, so H(0.5)=1 and H(0)=H(1)=0.
func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -(p*math.Log2(p) + (1-p)*math.Log2(1-p))
}
