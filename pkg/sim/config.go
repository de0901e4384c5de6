package sim

import "time"

// Config holds the simulation constants. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	AlphaMin      float64
	AlphaDecay    float64
	VelocityDecay float64

	ChargeStrength    float64 // negative repels
	ChargeDistanceMax float64

	LinkDistance float64
	LinkStrength float64

	CenterStrength float64

	CollideMargin     float64 // added to each node's rendered radius
	CollideStrength   float64
	CollideIterations int

	WarmupTicks int
	Cooldown    time.Duration
}

// DefaultConfig returns the tuning used by the interactive view
func DefaultConfig() Config {
	return Config{
		AlphaMin:          0.001,
		AlphaDecay:        0.02,
		VelocityDecay:     0.3,
		ChargeStrength:    -120,
		ChargeDistanceMax: 300,
		LinkDistance:      80,
		LinkStrength:      0.7,
		CenterStrength:    0.05,
		CollideMargin:     6,
		CollideStrength:   0.8,
		CollideIterations: 3,
		WarmupTicks:       50,
		Cooldown:          3 * time.Second,
	}
}
