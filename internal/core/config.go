package core

// RuntimeConfig contains platform settings passed to a duel at creation.
// The front-end uses this to size the HUD and to seed deterministic play.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second driving the registry update fan-out
	Seed     int64 // RNG seed for shot resolution and opponent behavior
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}
