package sapling

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ChannelParams holds one value per transform channel.
type ChannelParams struct {
	Loc   float64 `yaml:"loc"`
	Rot   float64 `yaml:"rot"`
	Scale float64 `yaml:"scale"`
}

var channelNames = [...]string{"loc", "rot", "scale"}

func (p ChannelParams) values() [3]float64 {
	return [3]float64{p.Loc, p.Rot, p.Scale}
}

// Threshold is an arrival test: the channel has arrived once the distance to
// its target is below Delta and its velocity is below Speed.
type Threshold struct {
	Delta float64 `yaml:"delta" validate:"gt=0"`
	Speed float64 `yaml:"speed" validate:"gt=0"`
}

// Config tunes the animator defaults, the spatial index and the clock.
// Location and scale thresholds are multiplied by the shape's current scale;
// rotation thresholds are absolute.
type Config struct {
	// Friction is the default velocity retention per tick while seeking.
	Friction ChannelParams `yaml:"friction"`
	// Speed is the default delta-to-velocity gain while seeking.
	Speed ChannelParams `yaml:"speed"`

	LocArrival   Threshold `yaml:"locArrival"`
	RotArrival   Threshold `yaml:"rotArrival"`
	ScaleArrival Threshold `yaml:"scaleArrival"`

	// VelocityEpsilon is the speed (relative to scale for location and
	// scale) below which velocity is not applied.
	VelocityEpsilon float64 `yaml:"velocityEpsilon" validate:"gte=0"`

	// RadiusPadding is the loose AABB padding as a fraction of the radius.
	RadiusPadding float64 `yaml:"radiusPadding" validate:"gte=0"`

	// TreeMinChildren and TreeMaxChildren are the R-tree branching factors.
	TreeMinChildren int `yaml:"treeMinChildren" validate:"gte=1"`
	TreeMaxChildren int `yaml:"treeMaxChildren"`

	// TPS is the tick rate hosts use to derive the per-tick delta time.
	TPS int `yaml:"tps" validate:"gt=0"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Friction:        ChannelParams{Loc: 0.8, Rot: 0.8, Scale: 0.7},
		Speed:           ChannelParams{Loc: 1, Rot: 1, Scale: 2},
		LocArrival:      Threshold{Delta: 0.01, Speed: 0.1},
		RotArrival:      Threshold{Delta: 0.01, Speed: 0.1},
		ScaleArrival:    Threshold{Delta: 0.005, Speed: 0.05},
		VelocityEpsilon: 1e-3,
		RadiusPadding:   0.5,
		TreeMinChildren: 2,
		TreeMaxChildren: 16,
		TPS:             60,
	}
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	})
	v.RegisterStructValidation(validateConfig, Config{})
	return v
}

// validateConfig checks the per-channel ranges and the R-tree branching.
func validateConfig(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	for i, f := range c.Friction.values() {
		if f < 0 || f >= 1 {
			sl.ReportError(f, "friction."+channelNames[i], "Friction", "unit", "")
		}
	}
	for i, sp := range c.Speed.values() {
		if sp <= 0 {
			sl.ReportError(sp, "speed."+channelNames[i], "Speed", "gt", "0")
		}
	}
	if c.TreeMinChildren >= 1 && c.TreeMaxChildren < 2*c.TreeMinChildren {
		sl.ReportError(c.TreeMaxChildren, "treeMaxChildren", "TreeMaxChildren",
			"branching", strconv.Itoa(2*c.TreeMinChildren))
	}
}

// Validate reports the first out-of-range field, if any.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validating config")
	}
	e := verrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "unit":
		return errors.Errorf("%s must be in [0, 1), got %v", field, e.Value())
	case "gt":
		return errors.Errorf("%s must be greater than %s, got %v", field, e.Param(), e.Value())
	case "gte":
		return errors.Errorf("%s must be at least %s, got %v", field, e.Param(), e.Value())
	case "branching":
		return errors.Errorf("%s must be at least twice treeMinChildren (%s), got %v", field, e.Param(), e.Value())
	default:
		return errors.Errorf("%s failed %s, got %v", field, e.Tag(), e.Value())
	}
}
