package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Suad0/trading4j-sub002/internal/buffer"
	coinmath "github.com/Suad0/trading4j-sub002/internal/math"
	"github.com/Suad0/trading4j-sub002/internal/metrics"
	"github.com/Suad0/trading4j-sub002/internal/model"
	"github.com/Suad0/trading4j-sub002/internal/storage"
	"github.com/drakos74/go-ex-machina/xmath"
)

const (
	// maxGradNorm caps every gradient tensor before it is applied
	maxGradNorm = 1.0
	// errorTrendSamples is how many recent errors feed the retraining trend fit
	errorTrendSamples = 20
	// staleSamples is how many online updates the model absorbs before
	// a full retrain is suggested
	staleSamples = 100
	// maxFailures is how many discarded numeric failures the model tolerates
	// before it reports itself as degraded
	maxFailures = 10
)

// Window is one labeled training sequence.
type Window struct {
	Features [][]float64 `json:"features"`
	Target   float64     `json:"target"`
}

// StoxLSTM unrolls the stochastic extended lstm cell over a lookback window
// to produce directional predictions with calibrated uncertainty.
// Train, Update and Load are writers on the weights, Predict is a reader;
// concurrent predictions only share read access, the recurrent state is local
// to each call.
type StoxLSTM struct {
	id    string
	cfg   Config
	mutex sync.RWMutex
	cell  *Cell
	rnd   *rand.Rand

	trained   bool
	trainedAt time.Time

	obs *observer
}

// observer tracks prediction errors and diagnostics outside the weight lock.
type observer struct {
	mutex    sync.Mutex
	errors   *buffer.Stats
	recent   *buffer.Buffer
	last     map[string]float64
	failures int
	updates  int
}

func newObserver() *observer {
	return &observer{
		errors: buffer.NewStats(),
		recent: buffer.NewBuffer(errorTrendSamples),
		last:   make(map[string]float64),
	}
}

func (o *observer) failure() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.failures++
}

func (o *observer) observe(details map[string]float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	for k, v := range details {
		o.last[k] = v
	}
}

func (o *observer) track(err float64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errors.Push(err)
	o.recent.Push(err)
	o.updates++
}

func (o *observer) reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.errors = buffer.NewStats()
	o.recent = buffer.NewBuffer(errorTrendSamples)
	o.failures = 0
	o.updates = 0
}

// NewStoxLSTM creates a new sequence model for the given config.
// The random source drives the weight initialisation and the latent sampling,
// a fixed seed reproduces the exact numeric trajectory.
func NewStoxLSTM(cfg Config, rnd *rand.Rand) (*StoxLSTM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StoxLSTM{
		id:   uuid.New().String(),
		cfg:  cfg,
		cell: NewCell(cfg, NewWeights(cfg, rnd), rnd),
		rnd:  rnd,
		obs:  newObserver(),
	}, nil
}

// ID returns the model instance id.
func (s *StoxLSTM) ID() string {
	return s.id
}

// Config returns the model config.
// Load can swap the config, so reads synchronize with the weight lock.
func (s *StoxLSTM) Config() Config {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg
}

// IsReady reports whether the model has been trained at least once.
func (s *StoxLSTM) IsReady() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.trained
}

// MinimumTrainingData returns the minimum number of windows a training call needs.
func (s *StoxLSTM) MinimumTrainingData() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg.MinWindows
}

// Lookback returns the minimum number of timesteps per window.
func (s *StoxLSTM) Lookback() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.cfg.Lookback
}

// Train learns the cell weights from the given labeled windows.
// Windows shorter than the lookback are skipped as a data sufficiency failure;
// if fewer than the minimum usable windows remain, the weights stay untouched
// and the call reports failure.
func (s *StoxLSTM) Train(windows []Window) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	usable := make([]Window, 0, len(windows))
	for _, w := range windows {
		if len(w.Features) < s.cfg.Lookback {
			log.Warn().
				Str("model", s.id).
				Int("timesteps", len(w.Features)).
				Int("lookback", s.cfg.Lookback).
				Msg("not enough timesteps to train")
			continue
		}
		usable = append(usable, w)
	}
	if len(usable) < s.cfg.MinWindows {
		log.Warn().
			Str("model", s.id).
			Int("windows", len(usable)).
			Int("min-windows", s.cfg.MinWindows).
			Msg("not enough windows to train")
		return false
	}

	var epochs int
	var loss float64
	var applied int
	for epoch := 0; epoch < s.cfg.MaxEpochs; epoch++ {
		epochs = epoch + 1
		loss = 0
		for _, w := range usable {
			tr, hPrev, x, err := s.unroll(w.Features, true)
			if err != nil {
				s.obs.failure()
				metrics.Observer.Failure(s.id)
				continue
			}
			sampleLoss, ok := s.gradientStep(tr, hPrev, x, w.Target)
			if !ok {
				s.obs.failure()
				metrics.Observer.Failure(s.id)
				continue
			}
			loss += sampleLoss
			applied++
		}
		if math.Sqrt(loss/float64(len(usable))) < s.cfg.Threshold {
			break
		}
	}

	if applied == 0 {
		log.Error().
			Str("model", s.id).
			Int("windows", len(usable)).
			Msg("training discarded all samples")
		return false
	}

	s.trained = true
	s.trainedAt = time.Now()
	s.obs.reset()
	metrics.Observer.Training(s.id)
	log.Info().
		Str("model", s.id).
		Int("windows", len(usable)).
		Int("epochs", epochs).
		Float64("loss", loss).
		Msg("trained model")
	return true
}

// Predict unrolls the cell over the last lookback timesteps and extracts
// the directional signal with its uncertainty diagnostics.
// It never fails for well formed input : before the first successful training,
// or when the input is too short, the neutral low confidence prediction is returned.
func (s *StoxLSTM) Predict(features [][]float64) model.Prediction {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.trained {
		return model.NoPrediction()
	}
	if len(features) < s.cfg.Lookback {
		log.Warn().
			Str("model", s.id).
			Int("timesteps", len(features)).
			Int("lookback", s.cfg.Lookback).
			Msg("not enough timesteps to predict")
		return model.NoPrediction()
	}

	tr, _, _, err := s.unroll(features, false)
	if err != nil {
		s.obs.failure()
		metrics.Observer.Failure(s.id)
		log.Error().Err(err).Str("model", s.id).Msg("prediction step discarded")
		return model.NoPrediction()
	}

	w := s.cell.Weights()
	p := w.Why.Dot(tr.hidden) + w.By

	signal := model.Hold
	if p > s.cfg.Threshold {
		signal = model.Buy
	} else if p < -s.cfg.Threshold {
		signal = model.Sell
	}

	// monotonic bounded mapping of the projection magnitude
	confidence := 2*coinmath.Sigmoid(math.Abs(p)) - 1

	details := map[string]float64{
		model.KLDivergence:          KLDivergence(tr.mu, tr.logVar),
		model.Entropy:               BinaryEntropy(coinmath.Sigmoid(p)),
		model.Uncertainty:           Uncertainty(tr.logVar),
		model.StochasticEnhancement: tr.enhancement.Norm(),
	}
	s.obs.observe(details)
	metrics.Observer.Prediction(s.id, signal.String())
	metrics.Observer.Observe(s.id, details[model.KLDivergence], details[model.Uncertainty])

	return model.NewPrediction(signal, confidence, details)
}

// Update applies one online gradient step for a single observed outcome.
// A numerically degenerate step is skipped rather than applied, so the model
// always stays usable.
func (s *StoxLSTM) Update(features []float64, outcome float64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	x := xmath.Vec(len(features)).With(features...)
	tr, err := s.cell.step(x, xmath.Vec(s.cfg.HiddenSize), xmath.Vec(s.cfg.HiddenSize), true)
	if err != nil {
		s.obs.failure()
		metrics.Observer.Failure(s.id)
		return false
	}

	w := s.cell.Weights()
	errOut := w.Why.Dot(tr.hidden) + w.By - outcome

	hPrev := xmath.Vec(s.cfg.HiddenSize)
	if _, ok := s.gradientStep(tr, hPrev, x, outcome); !ok {
		s.obs.failure()
		metrics.Observer.Failure(s.id)
		return false
	}

	s.obs.track(math.Abs(errOut))
	return true
}

// NeedsRetraining is an advisory heuristic over the accumulated prediction
// errors, the recent error trend and the age since the last training.
func (s *StoxLSTM) NeedsRetraining() bool {
	s.mutex.RLock()
	trained := s.trained
	threshold := s.cfg.Threshold
	s.mutex.RUnlock()
	if !trained {
		return true
	}

	s.obs.mutex.Lock()
	defer s.obs.mutex.Unlock()

	if s.obs.failures > maxFailures {
		return true
	}
	if s.obs.updates > staleSamples {
		return true
	}

	recent := s.obs.recent.Get()
	if len(recent) >= 5 && s.obs.errors.Avg() > threshold {
		xx := make([]float64, len(recent))
		for i := range recent {
			xx[i] = float64(i)
		}
		if cc, err := coinmath.Fit(xx, recent, 1); err == nil && cc[1] > 0 {
			return true
		}
	}
	return false
}

// Metrics returns the diagnostics of the last forward pass
// together with the error tracking counters.
func (s *StoxLSTM) Metrics() map[string]float64 {
	s.obs.mutex.Lock()
	defer s.obs.mutex.Unlock()
	mm := make(map[string]float64, len(s.obs.last)+3)
	for k, v := range s.obs.last {
		mm[k] = v
	}
	mm["failures"] = float64(s.obs.failures)
	mm["updates"] = float64(s.obs.updates)
	mm["error"] = s.obs.errors.Avg()
	return mm
}

// unroll threads a fresh state through the last lookback timesteps of the
// given features and returns the final step trace together with the hidden
// state and input entering that step.
func (s *StoxLSTM) unroll(features [][]float64, training bool) (trace, xmath.Vector, xmath.Vector, error) {
	window := features[len(features)-s.cfg.Lookback:]

	h := xmath.Vec(s.cfg.HiddenSize)
	c := xmath.Vec(s.cfg.HiddenSize)
	var tr trace
	var hPrev, x xmath.Vector
	for _, f := range window {
		x = xmath.Vec(len(f)).With(f...)
		hPrev = h
		var err error
		tr, err = s.cell.step(x, h, c, training)
		if err != nil {
			return tr, hPrev, x, err
		}
		h = tr.hidden
		c = tr.cell
	}
	return tr, hPrev, x, nil
}

// gradientStep applies one truncated gradient descent step for the final
// timestep of a window. All gradients are computed first, clipped by their
// global norm and checked, so that a degenerate sample never applies a
// partial update.
func (s *StoxLSTM) gradientStep(tr trace, hPrev, x xmath.Vector, target float64) (float64, bool) {
	w := s.cell.Weights()
	lr := s.cfg.LearningRate

	pred := w.Why.Dot(tr.hidden) + w.By
	errOut := pred - target
	kl := KLDivergence(tr.mu, tr.logVar)
	loss := errOut*errOut + s.cfg.Beta*kl

	// output head
	dWhy := tr.hidden.Mult(errOut)
	dBy := errOut

	// backpropagate into the final step
	dh := w.Why.Mult(errOut)
	tanhNorm := tr.norm.Op(math.Tanh)
	dOut := dh.X(tanhNorm).X(tr.out.Op(dSigmoid))
	dNorm := dh.X(tr.out).X(tanhNorm.Op(dTanh))
	dCell := dNorm
	var dGamma, dShift xmath.Vector
	if s.cfg.LayerNormalization {
		dCell = dNorm.X(w.Gamma)
		dGamma = dNorm.X(tr.normRaw)
		dShift = dNorm.Copy()
	}
	dCand := dCell.X(tr.in).X(tr.cand.Op(dTanh))
	dIn := dCell.X(tr.cand).X(tr.in.Op(dSigmoid))
	dForget := dCell.X(tr.prevCell).X(tr.forget.Op(dSigmoid))

	// latent posterior regularization
	dMu := tr.mu.Mult(s.cfg.Beta)
	dLv := tr.logVar.Op(func(lv float64) float64 {
		return 0.5 * (math.Exp(lv) - 1)
	}).Mult(s.cfg.Beta)

	vecGrads := []xmath.Vector{dWhy, dOut, dCand, dIn, dForget, dMu, dLv}
	if s.cfg.LayerNormalization {
		vecGrads = append(vecGrads, dGamma, dShift)
	}
	for _, g := range vecGrads {
		ClipVecByNorm(g, maxGradNorm)
		if !finiteVec(g) {
			return loss, false
		}
	}
	if !coinmath.IsFinite(loss) || !coinmath.IsFinite(dBy) {
		return loss, false
	}

	matGrads := []struct {
		target *xmath.Matrix
		grad   xmath.Matrix
	}{
		{&w.Wi, dIn.Prod(x)},
		{&w.Ui, dIn.Prod(hPrev)},
		{&w.Wf, dForget.Prod(x)},
		{&w.Uf, dForget.Prod(hPrev)},
		{&w.Wo, dOut.Prod(x)},
		{&w.Uo, dOut.Prod(hPrev)},
		{&w.Wc, dCand.Prod(x)},
		{&w.Uc, dCand.Prod(hPrev)},
		{&w.Wmu, dMu.Prod(hPrev)},
		{&w.Wlv, dLv.Prod(hPrev)},
	}
	for _, g := range matGrads {
		ClipMatByNorm(g.grad, maxGradNorm)
		if !finiteMat(g.grad) {
			return loss, false
		}
	}

	// all gradients are well defined : apply the update
	for _, g := range matGrads {
		*g.target = g.target.Add(g.grad.Mult(-lr))
	}
	w.Why = w.Why.Add(dWhy.Mult(-lr))
	w.By -= lr * dBy
	w.Bi = w.Bi.Add(dIn.Mult(-lr))
	w.Bf = w.Bf.Add(dForget.Mult(-lr))
	w.Bo = w.Bo.Add(dOut.Mult(-lr))
	w.Bc = w.Bc.Add(dCand.Mult(-lr))
	w.Bmu = w.Bmu.Add(dMu.Mult(-lr))
	w.Blv = w.Blv.Add(dLv.Mult(-lr))
	if s.cfg.LayerNormalization {
		w.Gamma = w.Gamma.Add(dGamma.Mult(-lr))
		w.Shift = w.Shift.Add(dShift.Mult(-lr))
	}

	return loss, true
}

// snapshot is the persisted form of the model.
type snapshot struct {
	ID        string    `json:"id"`
	Config    Config    `json:"config"`
	Weights   *Weights  `json:"weights"`
	Trained   bool      `json:"trained"`
	TrainedAt time.Time `json:"trained_at"`
}

// Save persists the model config and weights under the given key.
func (s *StoxLSTM) Save(store storage.Persistence, k storage.Key) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap := snapshot{
		ID:        s.id,
		Config:    s.cfg,
		Weights:   s.cell.Weights(),
		Trained:   s.trained,
		TrainedAt: s.trainedAt,
	}
	if err := store.Store(k, snap); err != nil {
		log.Error().Err(err).Str("model", s.id).Str("key", k.Path()).Msg("could not save model")
		return false
	}
	log.Info().Str("model", s.id).Str("key", k.Path()).Msg("saved model")
	return true
}

// Load restores config and weights from the given key.
// A snapshot with incompatible shapes is rejected and leaves the model untouched.
func (s *StoxLSTM) Load(store storage.Persistence, k storage.Key) bool {
	var snap snapshot
	if err := store.Load(k, &snap); err != nil {
		log.Error().Err(err).Str("model", s.id).Str("key", k.Path()).Msg("could not load model")
		return false
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.cfg.compatible(snap.Config) {
		log.Error().
			Str("model", s.id).
			Str("key", k.Path()).
			Str("config", fmt.Sprintf("%+v", snap.Config)).
			Msg("incompatible model shapes")
		return false
	}
	if snap.Weights == nil {
		log.Error().Str("model", s.id).Str("key", k.Path()).Msg("snapshot carries no weights")
		return false
	}
	if err := snap.Weights.Check(snap.Config); err != nil {
		log.Error().Err(err).Str("model", s.id).Str("key", k.Path()).Msg("corrupt weight shapes")
		return false
	}

	s.cfg = snap.Config
	s.cell = NewCell(snap.Config, snap.Weights, s.rnd)
	s.trained = snap.Trained
	s.trainedAt = snap.TrainedAt
	s.obs.reset()
	log.Info().Str("model", s.id).Str("key", k.Path()).Msg("loaded model")
	return true
}

func dSigmoid(activated float64) float64 {
	return activated * (1 - activated)
}

func dTanh(activated float64) float64 {
	return 1 - activated*activated
}
