package trajectory

import "strings"

// ColumnBindings names the raw columns read for each pose field.
type ColumnBindings struct {
	PositionX string `json:"position_x" yaml:"position_x"`
	PositionY string `json:"position_y" yaml:"position_y"`
	PositionZ string `json:"position_z" yaml:"position_z"`

	DirectionX string `json:"direction_x" yaml:"direction_x"`
	DirectionY string `json:"direction_y" yaml:"direction_y"`
	DirectionZ string `json:"direction_z" yaml:"direction_z"`
	UpX        string `json:"up_x" yaml:"up_x"`
	UpY        string `json:"up_y" yaml:"up_y"`
	UpZ        string `json:"up_z" yaml:"up_z"`
	RightX     string `json:"right_x" yaml:"right_x"`
	RightY     string `json:"right_y" yaml:"right_y"`
	RightZ     string `json:"right_z" yaml:"right_z"`

	Time string `json:"time" yaml:"time"`

	QuaternionW string `json:"quaternion_w" yaml:"quaternion_w"`
	QuaternionX string `json:"quaternion_x" yaml:"quaternion_x"`
	QuaternionY string `json:"quaternion_y" yaml:"quaternion_y"`
	QuaternionZ string `json:"quaternion_z" yaml:"quaternion_z"`
}

// DefaultColumnBindings returns the column names written by the recorder.
func DefaultColumnBindings() ColumnBindings {
	return ColumnBindings{
		PositionX:   "PositionX",
		PositionY:   "PositionY",
		PositionZ:   "PositionZ",
		DirectionX:  "DirectionX",
		DirectionY:  "DirectionY",
		DirectionZ:  "DirectionZ",
		UpX:         "UpX",
		UpY:         "UpY",
		UpZ:         "UpZ",
		RightX:      "RightX",
		RightY:      "RightY",
		RightZ:      "RightZ",
		Time:        "Time",
		QuaternionW: "QuaternionW",
		QuaternionX: "QuaternionX",
		QuaternionY: "QuaternionY",
		QuaternionZ: "QuaternionZ",
	}
}

// Filter keeps a row only if its value in Column is one of Allowed.
type Filter struct {
	Column  string   `json:"column" yaml:"column"`
	Allowed []string `json:"allowed" yaml:"allowed"`
}

// Config controls how raw tables become trajectories.
type Config struct {
	UseQuaternion          bool
	MultipleTrialsPerFile  bool
	UseAllFilesInDirectory bool

	// KeyColumns build the super key when MultipleTrialsPerFile is set.
	KeyColumns []string

	// Filters are AND-combined.
	Filters []Filter

	Columns ColumnBindings
}

// DefaultConfig returns a single-trial-per-file configuration with the
// default column bindings.
func DefaultConfig() Config {
	return Config{Columns: DefaultColumnBindings()}
}

// Validate checks option combinations. It does not look at any data.
func (c Config) Validate() error {
	if c.MultipleTrialsPerFile && c.UseAllFilesInDirectory {
		return NewConfigurationError("multiple_trials_per_file",
			"using multiple files and multiple trials in one file is not supported")
	}
	if c.MultipleTrialsPerFile && len(c.KeyColumns) == 0 {
		return NewConfigurationError("key_columns", "required when multiple_trials_per_file is set")
	}
	for _, k := range c.KeyColumns {
		if k == "" || strings.Contains(k, KeySeparator) || strings.Contains(k, pairSeparator) {
			return NewConfigurationError("key_columns", "column name %q cannot be empty or contain %q or %q",
				k, KeySeparator, pairSeparator)
		}
	}
	for _, f := range c.Filters {
		if f.Column == "" {
			return NewConfigurationError("filters", "filter without a column name")
		}
		if len(f.Allowed) == 0 {
			return NewConfigurationError("filters", "filter on %s lists no allowed values", f.Column)
		}
	}
	return nil
}

// requiredColumns lists every column the configuration reads, in the
// order they are reported when missing.
func (c Config) requiredColumns() []string {
	b := c.Columns
	cols := []string{b.PositionX, b.PositionY, b.PositionZ, b.Time}
	if c.UseQuaternion {
		cols = append(cols, b.QuaternionW, b.QuaternionX, b.QuaternionY, b.QuaternionZ)
	} else {
		cols = append(cols,
			b.DirectionX, b.DirectionY, b.DirectionZ,
			b.UpX, b.UpY, b.UpZ,
			b.RightX, b.RightY, b.RightZ)
	}
	if c.MultipleTrialsPerFile {
		cols = append(cols, c.KeyColumns...)
	}
	for _, f := range c.Filters {
		cols = append(cols, f.Column)
	}
	return cols
}
