package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/menta2k/focuscrop/pkg/cropper"
	"github.com/menta2k/focuscrop/pkg/geometry"
	"github.com/menta2k/focuscrop/pkg/types"
)

const (
	DefaultStepTimeout   = 2500 * time.Millisecond
	DefaultGlobalTimeout = 7 * time.Second
	DefaultMinConfidence = 0.5
	DefaultMergeDistance = 0.3
)

// Detector finds salient regions in an image. Implementations may return
// several candidates; an empty slice means nothing was found.
type Detector interface {
	Method() types.Method
	Detect(ctx context.Context, img image.Image) ([]types.SalientRegion, error)
}

// Outcome classifies a single detector attempt
type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"
	OutcomeError         Outcome = "error"
	OutcomeEmpty         Outcome = "empty"
	OutcomeLowConfidence Outcome = "low_confidence"
	OutcomeTimeout       Outcome = "timeout"
	OutcomeSkipped       Outcome = "skipped"
)

// Attempt records one step of the chain
type Attempt struct {
	Method   types.Method  `json:"method"`
	Outcome  Outcome       `json:"outcome"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Resolution is the single result of a chain run
type Resolution struct {
	RunID    string              `json:"run_id"`
	Region   types.SalientRegion `json:"region"`
	State    State               `json:"state"`
	Attempts []Attempt           `json:"attempts"`
	// Spread is set when the merged candidates were far apart
	Spread  bool          `json:"spread"`
	Elapsed time.Duration `json:"elapsed"`
}

// Config controls the fallback chain
type Config struct {
	// Order is the fallback order. Methods without a registered detector
	// are skipped.
	Order         []types.Method
	StepTimeout   time.Duration
	GlobalTimeout time.Duration
	MinConfidence float64
	// MergeDistance is the fraction of the image diagonal above which
	// merged candidates are reported as spread
	MergeDistance float64
}

// DefaultConfig returns the chain face → object → attention
func DefaultConfig() Config {
	return Config{
		Order:         []types.Method{types.MethodFace, types.MethodObject, types.MethodAttention},
		StepTimeout:   DefaultStepTimeout,
		GlobalTimeout: DefaultGlobalTimeout,
		MinConfidence: DefaultMinConfidence,
		MergeDistance: DefaultMergeDistance,
	}
}

// Orchestrator runs detectors in fallback order and resolves every run to
// exactly one region. It is safe for concurrent use.
type Orchestrator struct {
	config    Config
	detectors map[types.Method]Detector
}

// NewOrchestrator validates config and registers detectors by method
func NewOrchestrator(config Config, detectors ...Detector) (*Orchestrator, error) {
	if config.StepTimeout <= 0 {
		config.StepTimeout = DefaultStepTimeout
	}
	if config.GlobalTimeout <= 0 {
		config.GlobalTimeout = DefaultGlobalTimeout
	}
	if config.MinConfidence < 0 || config.MinConfidence > 1 {
		return nil, fmt.Errorf("min confidence %v outside [0,1]", config.MinConfidence)
	}
	if config.MergeDistance <= 0 {
		config.MergeDistance = DefaultMergeDistance
	}

	seen := map[types.Method]bool{}
	for _, m := range config.Order {
		if _, ok := AwaitingState(m); !ok {
			return nil, fmt.Errorf("method %s cannot be part of the detection chain", m)
		}
		if seen[m] {
			return nil, fmt.Errorf("method %s listed twice in detection chain", m)
		}
		seen[m] = true
	}

	o := &Orchestrator{
		config:    config,
		detectors: make(map[types.Method]Detector, len(detectors)),
	}
	for _, det := range detectors {
		if det == nil {
			continue
		}
		if _, dup := o.detectors[det.Method()]; dup {
			return nil, fmt.Errorf("duplicate detector for method %s", det.Method())
		}
		o.detectors[det.Method()] = det
	}
	return o, nil
}

// Config returns the effective configuration
func (o *Orchestrator) Config() Config {
	return o.config
}

// Resolve runs the chain on img. Detector failures and timeouts never
// surface as errors: the worst case is a geometric-center region. Only an
// invalid image or cancellation of ctx return an error.
func (o *Orchestrator) Resolve(ctx context.Context, img image.Image) (*Resolution, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", cropper.ErrInvalidImage)
	}
	d := geometry.DimensionsOf(img)
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %s", cropper.ErrInvalidImage, d)
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := log.Ctx(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := newGate()
	rec := &recorder{}
	var current atomic.Int32
	current.Store(int32(StateIdle))

	timer := time.AfterFunc(o.config.GlobalTimeout, func() {
		from := State(current.Load())
		if g.fire(result{
			region: types.GeometricCenter(d),
			state:  Transition(from, EventGlobalTimeout, o.config.Order),
			err:    ErrDetectionTimeout,
		}) {
			logger.Warn().Stringer("state", from).Dur("timeout", o.config.GlobalTimeout).Msg("detection chain timed out")
		}
	})
	defer timer.Stop()

	go o.run(runCtx, img, d, g, rec, &current)

	var res result
	select {
	case res = <-g.done:
	case <-ctx.Done():
		if g.fire(result{err: ctx.Err()}) {
			rec.seal()
			return nil, ctx.Err()
		}
		res = <-g.done
	}

	attempts := rec.seal()
	if res.final != nil {
		attempts = append(attempts, *res.final)
	}

	resolution := &Resolution{
		RunID:    runID,
		Region:   res.region,
		State:    res.state,
		Attempts: attempts,
		Spread:   res.spread,
		Elapsed:  time.Since(start),
	}
	resolutionsTotal.WithLabelValues(res.region.Method.String()).Inc()

	logger.Info().
		Stringer("state", resolution.State).
		Stringer("method", resolution.Region.Method).
		Float64("confidence", resolution.Region.Confidence).
		Stringer("region", resolution.Region.Rect).
		Bool("spread", resolution.Spread).
		Int("attempts", len(resolution.Attempts)).
		Dur("elapsed", resolution.Elapsed).
		Msg("detection resolved")

	return resolution, nil
}

// run walks the transition table until a terminal state and fires the gate.
// It returns silently when ctx is cancelled; Resolve owns that path.
func (o *Orchestrator) run(ctx context.Context, img image.Image, d geometry.Dimensions, g *gate, rec *recorder, current *atomic.Int32) {
	logger := log.Ctx(ctx)
	state := Transition(StateIdle, EventStart, o.config.Order)

	for !state.Terminal() {
		current.Store(int32(state))
		m, _ := state.Method()

		att, region, spread := o.step(ctx, m, img, d)
		if ctx.Err() != nil {
			return
		}

		if att.Outcome == OutcomeAccepted {
			next := Transition(state, EventAccepted, o.config.Order)
			if !g.fire(result{region: region, state: next, final: &att, spread: spread}) {
				logger.Debug().Stringer("method", m).Msg("discarding late detection result")
			}
			return
		}

		rec.add(att)
		logger.Debug().
			Stringer("method", m).
			Str("outcome", string(att.Outcome)).
			Err(att.Err).
			Dur("duration", att.Duration).
			Msg("detector rejected, advancing chain")
		state = Transition(state, EventRejected, o.config.Order)
	}

	g.fire(result{region: types.GeometricCenter(d), state: state})
}

// step runs one detector under the step timeout and classifies its result
func (o *Orchestrator) step(ctx context.Context, m types.Method, img image.Image, d geometry.Dimensions) (Attempt, types.SalientRegion, bool) {
	att := Attempt{Method: m}

	det, ok := o.detectors[m]
	if !ok {
		att.Outcome = OutcomeSkipped
		att.Err = fmt.Errorf("%w: %s", ErrNoDetector, m)
		att.Error = att.Err.Error()
		attemptsTotal.WithLabelValues(m.String(), string(att.Outcome)).Inc()
		return att, types.SalientRegion{}, false
	}

	start := time.Now()
	regions, err := o.call(ctx, det, img)
	att.Duration = time.Since(start)
	stepDuration.WithLabelValues(m.String()).Observe(att.Duration.Seconds())

	var region types.SalientRegion
	var spread bool
	switch {
	case err != nil && (errors.Is(err, ErrDetectionTimeout) || errors.Is(err, context.DeadlineExceeded)):
		att.Outcome = OutcomeTimeout
		att.Err = err
	case err != nil:
		att.Outcome = OutcomeError
		att.Err = fmt.Errorf("%w: %w", ErrDetectionFailure, err)
	default:
		region, att.Outcome, spread = Merge(m, regions, d, o.config.MinConfidence, o.config.MergeDistance)
		if att.Outcome != OutcomeAccepted {
			att.Err = fmt.Errorf("%w: %s result from %s", ErrDetectionFailure, att.Outcome, m)
		}
	}
	if att.Err != nil {
		att.Error = att.Err.Error()
	}

	attemptsTotal.WithLabelValues(m.String(), string(att.Outcome)).Inc()
	return att, region, spread
}

// call runs det on its own goroutine so a detector that ignores its context
// still cannot hold the chain past the step timeout
func (o *Orchestrator) call(ctx context.Context, det Detector, img image.Image) ([]types.SalientRegion, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.config.StepTimeout)
	defer cancel()

	type reply struct {
		regions []types.SalientRegion
		err     error
	}
	ch := make(chan reply, 1)
	go func() {
		regions, err := det.Detect(stepCtx, img)
		ch <- reply{regions, err}
	}()

	select {
	case r := <-ch:
		return r.regions, r.err
	case <-stepCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s after %s", ErrDetectionTimeout, det.Method(), o.config.StepTimeout)
	}
}
