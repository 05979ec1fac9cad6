// Package runtime composes the image codec, lifecycle engine, preprocessor,
// inference engine, and actuation dispatcher into the single façade a host
// drives: init, load an agent, tick a sample, execute a decision, hot-swap
// a new agent, and read or reset statistics.
package runtime

import (
	"fmt"

	"github.com/edgeplug/runtime/src/core/actuation"
	"github.com/edgeplug/runtime/src/core/codec"
	"github.com/edgeplug/runtime/src/core/config"
	"github.com/edgeplug/runtime/src/core/crypto"
	"github.com/edgeplug/runtime/src/core/inference"
	"github.com/edgeplug/runtime/src/core/lifecycle"
	"github.com/edgeplug/runtime/src/core/platform"
	"github.com/edgeplug/runtime/src/core/preprocess"
	"github.com/edgeplug/runtime/src/core/status"
	"github.com/edgeplug/runtime/src/core/storage"
)

// Manifest is the lifecycle engine's manifest type, re-exported so callers
// of this package never need to import lifecycle directly.
type Manifest = lifecycle.Manifest

// Runtime is the composed façade. It is not safe for concurrent use beyond
// what its own components already serialize internally — per SPEC_FULL.md
// §5 the runtime's entry points are driven from a single cooperative loop.
type Runtime struct {
	cfg        *config.Config
	caps       platform.Capabilities
	lifecycle  *lifecycle.Engine
	window     *preprocess.Window
	infer      *inference.Engine
	dispatcher *actuation.Dispatcher

	shutdown      bool
	sensorSamples uint32
	safetyTrips   uint32
}

// Init constructs a Runtime from cfg and the platform capabilities it
// should drive. It loads the pinned public key from
// cfg.Provisioning.PublicKeyPath and attempts to resolve an active slot
// from persistent storage; finding none is not fatal — a fresh deployment
// has no agent staged yet and must reach LoadAgent or Hotswap first.
func Init(cfg *config.Config, caps platform.Capabilities) (*Runtime, error) {
	if cfg == nil {
		return nil, status.New(status.InvalidParam, "init", "config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, status.Wrap(status.InvalidParam, "init", err)
	}
	if caps.Clock == nil {
		return nil, status.New(status.InvalidParam, "init", "a clock capability is required")
	}
	if cfg.Provisioning.PublicKeyPath == "" {
		return nil, status.New(status.InvalidParam, "init", "provisioning.public_key_path is required")
	}

	pubKey, err := crypto.LoadPublicKey(cfg.Provisioning.PublicKeyPath)
	if err != nil {
		return nil, status.Wrap(status.InvalidParam, "init", err)
	}

	var store storage.SlotStore
	if cfg.Slot.Directory != "" {
		store = storage.NewFileStore(cfg.Slot.Directory)
	} else {
		store = storage.NewMemStore()
	}

	lifecycleEngine := lifecycle.NewEngine(store, caps.Clock, pubKey, cfg.Slot.SizeBytes)
	// Step 1: resolve whichever slot (if any) already holds a valid agent.
	_ = lifecycleEngine.Init() // NoValidSlot on a fresh deployment is expected, not fatal.

	window, err := preprocess.NewWindow(cfg.Window.Size, cfg.Window.FilterAlpha)
	if err != nil {
		return nil, status.Wrap(status.InvalidParam, "init", err)
	}

	r := &Runtime{
		cfg:        cfg,
		caps:       caps,
		lifecycle:  lifecycleEngine,
		window:     window,
		infer:      inference.NewEngine(cfg.Latency.InferenceBudgetMicros),
		dispatcher: actuation.NewDispatcher(caps.Serial, caps.Network, caps.Gpio, cfg.Transport.ModbusSlaveID, cfg.Latency.ActuationBudgetMillis),
	}

	// Step 2: if a slot was already active (warm restart), install it.
	if active, err := lifecycleEngine.Active(); err == nil {
		if err := r.installImage(active); err != nil {
			return nil, fmt.Errorf("resume active agent: %w", err)
		}
	}

	return r, nil
}

// LoadAgent verifies, persists, and installs an agent image. It is the
// entry point for both the first agent a fresh deployment ever runs and
// for every hot-swap thereafter — Hotswap is the same operation under the
// name the façade contract gives it.
func (r *Runtime) LoadAgent(bytes []byte, manifest Manifest) error {
	if r.shutdown {
		return status.New(status.InvalidParam, "load_agent", "runtime has been shut down")
	}

	// Step 1: persist the image through the lifecycle engine — hash and
	// signature verification, atomic slot commit.
	if err := r.lifecycle.Stage(bytes, manifest); err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	// Step 2: install whatever the lifecycle engine now reports active.
	active, err := r.lifecycle.Active()
	if err != nil {
		return fmt.Errorf("read back staged agent: %w", err)
	}
	if err := r.installImage(active); err != nil {
		return fmt.Errorf("install staged agent: %w", err)
	}
	return nil
}

// Hotswap replaces the running agent with a new signed image. It is
// identical to LoadAgent; the façade contract names both because a host
// cares whether it is programming a blank device or swapping a live one,
// even though this runtime's handling does not need to distinguish them.
func (r *Runtime) Hotswap(bytes []byte, manifest Manifest) error {
	return r.LoadAgent(bytes, manifest)
}

// installImage parses the envelope, installs its model into the inference
// engine, and resets the preprocessing window so a swapped-in agent starts
// from a clean sampling history rather than one filtered under the
// previous agent's low-pass coefficient.
func (r *Runtime) installImage(bytes []byte) error {
	parts, err := codec.Parse(bytes, r.cfg.PayloadCap())
	if err != nil {
		return status.Wrap(status.AgentLoad, "install", err)
	}
	if err := r.infer.LoadModel(parts.Model); err != nil {
		return err
	}
	// parts.Prep and parts.Act are validated for well-formedness by the
	// codec but carry agent-specific schemas this generation of the
	// runtime does not interpret further — "more elaborate mappings
	// belong to the agent, not the runtime" (SPEC_FULL.md §4.7).
	r.window.Reset()
	return nil
}

// Tick ingests one sample. It returns nil until the preprocessing window
// fills; once full, every call normalizes the window, runs inference, and
// maps the output to a decision. Sample ingestion strictly precedes any
// inference or actuation derived from it within a single call.
func (r *Runtime) Tick(sample preprocess.Sample) (*actuation.Command, error) {
	if r.shutdown {
		return nil, status.New(status.InvalidParam, "tick", "runtime has been shut down")
	}

	r.window.AddSample(sample)
	r.sensorSamples++
	if !r.window.IsReady() {
		return nil, nil
	}

	inSize := r.infer.InputSize()
	if inSize == 0 {
		return nil, status.New(status.InvalidParam, "tick", "no agent loaded")
	}

	input := make([]int8, inSize)
	if _, err := r.window.Normalize(input); err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	output := make([]int8, r.infer.OutputSize())
	if err := r.infer.Run(input, output); err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	cmd := r.decide(output)
	if cmd.Value < r.cfg.Safety.OutputMin || cmd.Value > r.cfg.Safety.OutputMax {
		r.safetyTrips++
		return nil, status.New(status.Safety, "tick", "decided output value violates the configured safety bound")
	}
	return &cmd, nil
}

// decide derives an ActuationCommand from an inference output vector: the
// sum's sign becomes gpio_state, the dequantized mean becomes value, and
// the target addresses come from the runtime's fixed transport
// configuration. This mapping is deliberately simple; richer decision
// logic belongs to the agent, not the runtime (SPEC_FULL.md §4.7).
func (r *Runtime) decide(output []int8) actuation.Command {
	var sum int32
	for _, v := range output {
		sum += int32(v)
	}
	gpioState := uint8(0)
	if sum >= 0 {
		gpioState = 1
	}

	var mean float32
	if len(output) > 0 {
		dequantized := make([]float32, len(output))
		_ = inference.Dequantize(r.cfg.Quant, output, dequantized)
		var total float32
		for _, v := range dequantized {
			total += v
		}
		mean = total / float32(len(output))
	}

	return actuation.Command{
		OpcuaNode:  r.cfg.Transport.OpcuaNode,
		ModbusAddr: r.cfg.Transport.ModbusAddr,
		GpioPin:    r.cfg.Transport.GpioPin,
		GpioState:  gpioState,
		Value:      mean,
	}
}

// Execute dispatches a decision across the configured transports.
func (r *Runtime) Execute(cmd actuation.Command) error {
	if r.shutdown {
		return status.New(status.InvalidParam, "execute", "runtime has been shut down")
	}
	return r.dispatcher.Dispatch(cmd)
}

// Shutdown marks the runtime unusable for further ticks or commands. It
// does not touch persisted slot state — the next Init against the same
// storage resumes from whatever was last committed.
func (r *Runtime) Shutdown() error {
	r.shutdown = true
	return nil
}
