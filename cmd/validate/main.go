package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/need"
)

// validate checks a needs-definition document before it ships with a
// data directory. Schema and semantic validation come from the loader;
// this tool layers on content warnings a malformed-but-valid document
// can still deserve.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <needs.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	if err := validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Needs config is valid!")
}

var needIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("needs config must have .json extension: %s", baseName)
	}

	cfg, err := need.LoadConfig(filename)
	if err != nil {
		return err
	}

	var warnings []string
	for id, def := range cfg.Needs {
		if !needIDPattern.MatchString(id) {
			return fmt.Errorf("need id %q must be lowercase snake_case (e.g. social_contact)", id)
		}
		if def.Thresholds[0].Value > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"need %q: lowest threshold starts at %v; values below it resolve to that threshold anyway",
				id, def.Thresholds[0].Value))
		}
		if _, ok := cfg.SatisfactionMethods[id]; !ok {
			warnings = append(warnings, fmt.Sprintf("need %q has no satisfaction methods", id))
		}
	}

	for needID, methods := range cfg.SatisfactionMethods {
		seen := make(map[string]bool)
		for _, m := range methods {
			if seen[m.ID] {
				return fmt.Errorf("need %q: duplicate satisfaction method id %q", needID, m.ID)
			}
			seen[m.ID] = true
			if m.Amount == 0 {
				warnings = append(warnings, fmt.Sprintf(
					"need %q: method %q has amount 0 and will have no effect", needID, m.ID))
			}
		}
	}

	fmt.Printf("  %d needs, %d satisfaction method groups, %d environmental effect groups\n",
		len(cfg.Needs), len(cfg.SatisfactionMethods), len(cfg.EnvironmentalEffects))

	for _, warning := range warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	return nil
}
