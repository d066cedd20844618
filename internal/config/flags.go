package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLayer     = flag.String("layer", "", "Data layer to read: all, joints, descriptor")
	flagTolerance = flag.Float64("tolerance", -1, "Vertex comparison tolerance")
	flagLogFile   = flag.String("log-file", "", "Write logs to this file")
	flagNoAtomic  = flag.Bool("no-atomic", false, "Write files in place instead of temp+rename")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLayer != "" {
		cfg.Data.Layer = *flagLayer
	}
	if *flagTolerance >= 0 {
		cfg.Compare.Tolerance = float32(*flagTolerance)
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagNoAtomic {
		cfg.Writer.Atomic = false
	}
}
