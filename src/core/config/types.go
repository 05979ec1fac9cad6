// Package config holds the runtime's tunable parameters: window/filter
// geometry, quantization scale/zero-point, slot storage, latency budgets,
// transport addressing, and the pinned public key used to verify agent
// images.
package config

// Config is the complete runtime configuration.
type Config struct {
	// Window carries the preprocessor's sliding-window and filter geometry.
	Window WindowConfig `yaml:"window"`

	// Quant carries the int8 quantization scale/zero-point pair.
	Quant QuantConfig `yaml:"quant"`

	// Slot carries the dual-slot image store's size and on-disk backing.
	Slot SlotConfig `yaml:"slot"`

	// Latency carries the per-call budgets enforced by inference and actuation.
	Latency LatencyConfig `yaml:"latency"`

	// Transport carries the fixed register/node addressing used by the
	// runtime façade's decision-to-command mapping.
	Transport TransportConfig `yaml:"transport"`

	// Safety carries the configured bound an agent's decided output value
	// must stay within before the façade will emit it as actuation.
	Safety SafetyConfig `yaml:"safety"`

	// Provisioning carries the pinned public key used to verify staged images.
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// WindowConfig configures the preprocessor.
type WindowConfig struct {
	// Size is the number of filtered voltage samples per window, W ∈ [1, 256].
	Size int `yaml:"size"`

	// FilterAlpha is the IIR low-pass coefficient, α ∈ [0.0, 1.0].
	FilterAlpha float64 `yaml:"filter_alpha"`
}

// QuantConfig configures the int8 <-> f32 affine mapping.
type QuantConfig struct {
	InScale  float32 `yaml:"in_scale"`
	InZero   int8    `yaml:"in_zero"`
	OutScale float32 `yaml:"out_scale"`
	OutZero  int8    `yaml:"out_zero"`
}

// SlotConfig configures the dual-slot agent image store.
type SlotConfig struct {
	// SizeBytes is S_slot, the fixed size of each of the two slots.
	SizeBytes int `yaml:"size_bytes"`

	// Directory, when non-empty, makes the store file-backed (one file per
	// slot under this directory). Empty means in-memory only.
	Directory string `yaml:"directory"`
}

// LatencyConfig configures the per-call time budgets.
type LatencyConfig struct {
	// InferenceBudgetMicros is the inference engine's per-call wall-time budget.
	InferenceBudgetMicros int `yaml:"inference_budget_micros"`

	// ActuationBudgetMillis is the actuation dispatcher's per-call wall-time budget.
	ActuationBudgetMillis int `yaml:"actuation_budget_millis"`
}

// TransportConfig configures the fixed addresses the façade's decision
// mapping writes to.
type TransportConfig struct {
	ModbusSlaveID  uint8  `yaml:"modbus_slave_id"`
	ModbusAddr     uint16 `yaml:"modbus_addr"`
	OpcuaNode      uint32 `yaml:"opcua_node"`
	GpioPin        uint8  `yaml:"gpio_pin"`
}

// SafetyConfig bounds the decided output value the façade will actuate.
// A decision whose value falls outside [OutputMin, OutputMax] trips a
// Safety error instead of being dispatched.
type SafetyConfig struct {
	OutputMin float32 `yaml:"output_min"`
	OutputMax float32 `yaml:"output_max"`
}

// ProvisioningConfig carries the pinned root public key.
type ProvisioningConfig struct {
	// PublicKeyPath points at a PEM-encoded Ed25519 public key file.
	PublicKeyPath string `yaml:"public_key_path"`
}

// Default returns a Config populated with the values fixed in SPEC_FULL.md.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Size:        32,
			FilterAlpha: 0.2,
		},
		Quant: QuantConfig{
			InScale:  1.0 / 64.0,
			InZero:   0,
			OutScale: 1.0 / 64.0,
			OutZero:  0,
		},
		Slot: SlotConfig{
			SizeBytes: 14 * 1024,
			Directory: "",
		},
		Latency: LatencyConfig{
			InferenceBudgetMicros: 1000,
			ActuationBudgetMillis: 10,
		},
		Transport: TransportConfig{
			ModbusSlaveID: 1,
			ModbusAddr:    1,
			OpcuaNode:     1,
			GpioPin:       1,
		},
		Safety: SafetyConfig{
			OutputMin: -128.0,
			OutputMax: 127.0,
		},
		Provisioning: ProvisioningConfig{
			PublicKeyPath: "",
		},
	}
}

// Validate checks the configuration's invariants, per SPEC_FULL.md.
func (c *Config) Validate() error {
	if c.Window.Size < 1 || c.Window.Size > 256 {
		return &ValidationError{Field: "window.size", Reason: "must be between 1 and 256"}
	}
	if c.Window.FilterAlpha < 0.0 || c.Window.FilterAlpha > 1.0 {
		return &ValidationError{Field: "window.filter_alpha", Reason: "must be between 0.0 and 1.0"}
	}

	const slotMetadataSize = 116
	if c.Slot.SizeBytes <= slotMetadataSize {
		return &ValidationError{Field: "slot.size_bytes", Reason: "must exceed the slot metadata record size"}
	}

	if c.Latency.InferenceBudgetMicros <= 0 {
		return &ValidationError{Field: "latency.inference_budget_micros", Reason: "must be positive"}
	}
	if c.Latency.ActuationBudgetMillis <= 0 {
		return &ValidationError{Field: "latency.actuation_budget_millis", Reason: "must be positive"}
	}

	if c.Safety.OutputMin > c.Safety.OutputMax {
		return &ValidationError{Field: "safety.output_min", Reason: "must not exceed safety.output_max"}
	}

	return nil
}

// ValidationError reports a single configuration invariant violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "config validation failed: " + e.Field + " - " + e.Reason
}

// PayloadCap returns the maximum payload size a staged image may occupy,
// given the configured slot size and the fixed slot metadata record size.
func (c *Config) PayloadCap() int {
	const slotMetadataSize = 116
	return c.Slot.SizeBytes - slotMetadataSize
}
