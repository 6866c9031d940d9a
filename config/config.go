package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"netgame/game"
	"netgame/meta"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned for game parameters outside their
// allowed ranges.
var ErrInvalidConfiguration = errors.New("invalid configuration")

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report fields by their yaml names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Game holds the parameters of a single game.
type Game struct {
	DefenseBudget    float64 `yaml:"defense_budget" json:"defenseBudget" validate:"gte=0"`
	Rounds           int     `yaml:"rounds" json:"rounds" validate:"gte=1"`
	NumPaths         int     `yaml:"num_paths" json:"numPaths" validate:"gte=1"`
	RandomnessFactor float64 `yaml:"randomness_factor" json:"randomnessFactor" validate:"gte=0,lte=1"`
	Seed             uint64  `yaml:"seed" json:"seed"`
}

// Default returns the parameters of the reference scenario.
func Default() Game {
	return Game{
		DefenseBudget:    meta.DEFENSE_BUDGET,
		Rounds:           meta.ROUNDS,
		NumPaths:         meta.NUM_PATHS,
		RandomnessFactor: meta.RANDOMNESS_FACTOR,
		Seed:             meta.SEED,
	}
}

// Validate checks every parameter and reports all violations at once.
func (g Game) Validate() error {
	if err := validate.Struct(g); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// EdgeSpec describes one edge of a network in a config file.
type EdgeSpec struct {
	From        int     `yaml:"from"`
	To          int     `yaml:"to"`
	Value       float64 `yaml:"value"`
	AttackCost  float64 `yaml:"attack_cost"`
	DefenseCost float64 `yaml:"defense_cost"`
}

// File is the layout of a YAML config file.
type File struct {
	Game    Game       `yaml:"game"`
	Network []EdgeSpec `yaml:"network"`
}

// Load reads and validates a config file. Parameters missing from the file
// keep their defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	f := &File{Game: Default()}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := f.Game.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Topology builds the configured network, or the reference network when the
// file lists no edges.
func (f *File) Topology() (*game.Topology, error) {
	if len(f.Network) == 0 {
		return game.CreateNetwork(), nil
	}

	t := game.NewTopology()
	for _, e := range f.Network {
		if err := t.AddEdge(game.NodeID(e.From), game.NodeID(e.To), e.Value, e.AttackCost, e.DefenseCost); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(messages, "; "))
}
