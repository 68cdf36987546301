package ruler

// Config holds the ruler display settings for one editing session.
type Config struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
	Unit    Unit `json:"unit" mapstructure:"unit" yaml:"unit"`
	// Precision is the number of decimals shown in measurements.
	Precision int `json:"precision" mapstructure:"precision" yaml:"precision"`
	// Thickness is the ruler band width in screen pixels.
	Thickness       float64 `json:"thickness" mapstructure:"thickness" yaml:"thickness"`
	ShowGuides      bool    `json:"showGuides" mapstructure:"showguides" yaml:"showGuides"`
	BackgroundColor string  `json:"backgroundColor" mapstructure:"backgroundcolor" yaml:"backgroundColor"`
	TickColor       string  `json:"tickColor" mapstructure:"tickcolor" yaml:"tickColor"`
}

// DefaultConfig returns millimeter rulers with one decimal.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Unit:            Millimeters,
		Precision:       1,
		Thickness:       20,
		ShowGuides:      true,
		BackgroundColor: "#f8f9fa",
		TickColor:       "#6c757d",
	}
}
