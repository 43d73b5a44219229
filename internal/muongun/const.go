package muongun

// Defaults applied by LoadConfig.
const (
	DefaultConfig   = "configs/config.yaml"
	MetricNamespace = "muongun"
	// gaussian integrand defaults
	GaussMean  = 0.0
	GaussSigma = 1.0
	// power-law integrand defaults (sea-level muon spectral index)
	PowerLawNorm  = 1.0
	PowerLawIndex = 2.7
)
