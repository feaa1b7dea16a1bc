// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package categories provides the arXiv category codes to scrape.
package categories

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

// computerScience lists every cs.* subject class.
var computerScience = []string{
	"cs.AI", "cs.AR", "cs.CC", "cs.CE", "cs.CG", "cs.CL", "cs.CR", "cs.CV", "cs.CY",
	"cs.DB", "cs.DC", "cs.DL", "cs.DM", "cs.DS", "cs.ET", "cs.FL", "cs.GL", "cs.GR",
	"cs.GT", "cs.HC", "cs.IR", "cs.IT", "cs.LG", "cs.LO", "cs.MA", "cs.MM", "cs.MS",
	"cs.NA", "cs.NE", "cs.NI", "cs.OH", "cs.OS", "cs.PF", "cs.PL", "cs.RO", "cs.SC",
	"cs.SD", "cs.SE", "cs.SI", "cs.SY",
}

// codePattern matches archive codes ("hep-th") and subject classes
// ("cs.AI", "math.NT", "q-bio.QM").
var codePattern = regexp.MustCompile(`^[a-z][a-z-]*(\.[A-Za-z][A-Za-z-]*)?$`)

// Default returns a copy of the computer-science category list.
func Default() []string {
	out := make([]string, len(computerScience))
	copy(out, computerScience)
	return out
}

// File is the on-disk YAML form of a category list.
type File struct {
	Categories []string `yaml:"categories"`
}

// LoadFile reads a YAML category file and validates its contents.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category file %s: %w", path, err)
	}
	cats := Normalize(f.Categories)
	if err := Validate(cats); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cats, nil
}

// Normalize trims whitespace and drops blank entries.
func Normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Validate rejects an empty list, malformed codes, and duplicates.
func Validate(codes []string) error {
	if len(codes) == 0 {
		return fmt.Errorf("no categories given")
	}
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if !codePattern.MatchString(c) {
			return fmt.Errorf("invalid category code %q", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
	return nil
}
