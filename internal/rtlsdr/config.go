package rtlsdr

// Config configures the tuner for Honeywell 5800 reception.
type Config struct {
	Frequency  uint32 // Hz, default 345_000_000
	SampleRate uint32 // Hz, default 1_000_000
	PPM        int    // frequency correction in parts per million, default 60
	AGC        bool   // enable automatic gain control
	Gain       int    // manual gain in tenths of dB, ignored if AGC is true
}

// DefaultConfig returns the tuning parameters this pipeline is tuned
// against: 345MHz, 1Msps, AGC on, 60ppm correction.
func DefaultConfig() Config {
	return Config{
		Frequency:  345_000_000,
		SampleRate: 1_000_000,
		PPM:        60,
		AGC:        true,
	}
}
