package need

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Urgency labels recognized in threshold definitions, least to most urgent.
var urgencyLevels = []string{"none", "low", "medium", "high", "critical"}

// Threshold is a labeled value band within a need's range. A need whose
// current value is at or above Value (and below the next threshold's Value)
// is in this band.
type Threshold struct {
	Value      float64 `json:"value"`
	Label      string  `json:"label"`
	Urgency    string  `json:"urgency"`
	MoodEffect float64 `json:"moodEffect"`
}

// PersonalityModifier adjusts how a need behaves for NPCs carrying a
// given personality. Multipliers stack multiplicatively across
// personalities, threshold shifts stack additively, and base-value
// overrides are last-writer-wins in NPC personality order.
type PersonalityModifier struct {
	DecayRateMultiplier *float64 `json:"decayRateMultiplier,omitempty"`
	ThresholdShift      float64  `json:"thresholdShift,omitempty"`
	BaseValue           *float64 `json:"baseValue,omitempty"`
}

// Definition is the static configuration for one need, loaded once at
// startup. Thresholds are sorted ascending by value during load so that
// resolution never has to re-sort.
type Definition struct {
	ID                   string                         `json:"id"`
	Name                 string                         `json:"name,omitempty"`
	Category             string                         `json:"category,omitempty"`
	Icon                 string                         `json:"icon,omitempty"`
	BaseMax              float64                        `json:"baseMax"`
	BaseDecayRate        float64                        `json:"baseDecayRate"`
	Thresholds           []Threshold                    `json:"thresholds"`
	BaseComfortValue     *float64                       `json:"baseComfortValue,omitempty"`
	PersonalityModifiers map[string]PersonalityModifier `json:"personalityModifiers,omitempty"`
}

// SatisfactionMethod is a named way of satisfying a need, with a default
// amount and the thought ids emitted when used.
type SatisfactionMethod struct {
	ID       string   `json:"id"`
	Thoughts []string `json:"thoughts,omitempty"`
	Amount   float64  `json:"amount"`
}

// Config is the needs-definition document. Missing sections are tolerated
// and treated as empty.
type Config struct {
	Needs                map[string]*Definition          `json:"needs"`
	SatisfactionMethods  map[string][]SatisfactionMethod `json:"satisfactionMethods,omitempty"`
	EnvironmentalEffects map[string]map[string]float64   `json:"environmentalEffects,omitempty"`
}

// Method looks up a satisfaction method by need id and method id.
func (c *Config) Method(needID, methodID string) (SatisfactionMethod, bool) {
	for _, m := range c.SatisfactionMethods[needID] {
		if m.ID == methodID {
			return m, true
		}
	}
	return SatisfactionMethod{}, false
}

// EnvironmentDelta returns the decay-rate adjustment for a need in a named
// environment, or 0 when none is configured.
func (c *Config) EnvironmentDelta(needID, environment string) float64 {
	if environment == "" {
		return 0
	}
	return c.EnvironmentalEffects[needID][environment]
}

// LoadConfig reads, validates and normalizes a needs-definition document.
// Validation fails fast: a malformed definition is a startup error, not
// something to discover later as NaN arithmetic.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read needs config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig validates and normalizes a needs-definition document from
// raw JSON.
func ParseConfig(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("needs config failed schema validation: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal needs config: %w", err)
	}

	if len(cfg.Needs) == 0 {
		return nil, fmt.Errorf("needs config defines no needs")
	}

	for id, def := range cfg.Needs {
		if def == nil {
			return nil, fmt.Errorf("need %q: definition is null", id)
		}
		def.ID = id
		if def.Name == "" {
			def.Name = displayName(id)
		}
		if err := def.validate(); err != nil {
			return nil, fmt.Errorf("need %q: %w", id, err)
		}
		// Sorted once here; resolution assumes ascending order.
		sort.SliceStable(def.Thresholds, func(i, j int) bool {
			return def.Thresholds[i].Value < def.Thresholds[j].Value
		})
	}

	for needID := range cfg.SatisfactionMethods {
		if _, ok := cfg.Needs[needID]; !ok {
			return nil, fmt.Errorf("satisfaction methods reference unknown need %q", needID)
		}
	}
	for needID := range cfg.EnvironmentalEffects {
		if _, ok := cfg.Needs[needID]; !ok {
			return nil, fmt.Errorf("environmental effects reference unknown need %q", needID)
		}
	}

	return &cfg, nil
}

func (d *Definition) validate() error {
	if d.BaseMax <= 0 {
		return fmt.Errorf("baseMax must be positive, got %v", d.BaseMax)
	}
	if d.BaseDecayRate < 0 {
		return fmt.Errorf("baseDecayRate must not be negative, got %v", d.BaseDecayRate)
	}
	if len(d.Thresholds) == 0 {
		return fmt.Errorf("at least one threshold is required")
	}
	for i, th := range d.Thresholds {
		if th.Value < 0 || th.Value > d.BaseMax {
			return fmt.Errorf("threshold %d value %v outside [0, %v]", i, th.Value, d.BaseMax)
		}
		if th.Label == "" {
			return fmt.Errorf("threshold %d is missing a label", i)
		}
		if !validUrgency(th.Urgency) {
			return fmt.Errorf("threshold %d has unknown urgency %q", i, th.Urgency)
		}
	}
	if d.BaseComfortValue != nil && (*d.BaseComfortValue < 0 || *d.BaseComfortValue > d.BaseMax) {
		return fmt.Errorf("baseComfortValue %v outside [0, %v]", *d.BaseComfortValue, d.BaseMax)
	}
	for name, mod := range d.PersonalityModifiers {
		if mod.DecayRateMultiplier != nil && *mod.DecayRateMultiplier < 0 {
			return fmt.Errorf("personality %q: decayRateMultiplier must not be negative", name)
		}
		if mod.BaseValue != nil && (*mod.BaseValue < 0 || *mod.BaseValue > d.BaseMax) {
			return fmt.Errorf("personality %q: baseValue %v outside [0, %v]", name, *mod.BaseValue, d.BaseMax)
		}
	}
	return nil
}

func validUrgency(u string) bool {
	for _, level := range urgencyLevels {
		if u == level {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

// displayName derives a human-readable name from a snake_case need id,
// e.g. "social_contact" -> "Social Contact".
func displayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
