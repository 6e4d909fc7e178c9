// Package prompt holds the instruction prompts sent to the generative models.
//
// Prompts are configuration, not code: a built-in pack is embedded and an
// operator-supplied YAML file may override any part of it.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPack []byte

// DefaultPreset is the transcription preset used when none is configured.
const DefaultPreset = "scn"

var ErrUnknownPreset = errors.New("unknown transcription preset")

// Pack is a collection of transcription presets plus the minutes template.
type Pack struct {
	Transcription map[string]string `yaml:"transcription"`
	Minutes       string            `yaml:"minutes"`
}

// Default returns the embedded prompt pack.
func Default() (*Pack, error) {
	return Parse(defaultPack, nil)
}

// LoadFile reads a YAML pack and layers it over the embedded one.
// Presets and the minutes template missing from the file keep their defaults.
func LoadFile(path string) (*Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	base, err := Default()
	if err != nil {
		return nil, err
	}
	return Parse(b, base)
}

// Parse decodes a YAML pack. When base is non-nil the decoded values are
// merged into it.
func Parse(b []byte, base *Pack) (*Pack, error) {
	p := base
	if p == nil {
		p = &Pack{}
	}
	if err := yaml.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("decode prompt pack: %w", err)
	}
	return p, nil
}

// Presets returns the names of the available transcription presets, sorted.
func (p *Pack) Presets() []string {
	names := make([]string, 0, len(p.Transcription))
	for name := range p.Transcription {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve selects a transcription preset and compiles the minutes template.
func (p *Pack) Resolve(preset string) (*Set, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	instr, ok := p.Transcription[preset]
	if !ok || strings.TrimSpace(instr) == "" {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, preset, strings.Join(p.Presets(), ", "))
	}
	if !strings.Contains(p.Minutes, "{{.Transcript}}") {
		return nil, errors.New("minutes template must reference {{.Transcript}}")
	}
	tmpl, err := template.New("minutes").Option("missingkey=error").Parse(p.Minutes)
	if err != nil {
		return nil, fmt.Errorf("parse minutes template: %w", err)
	}
	return &Set{Preset: preset, Transcription: instr, minutes: tmpl}, nil
}

// Set is the resolved prompt configuration of one pipeline.
type Set struct {
	Preset        string
	Transcription string
	minutes       *template.Template
}

// Minutes embeds the transcript into the minutes template.
func (s *Set) Minutes(transcript string) (string, error) {
	var b strings.Builder
	if err := s.minutes.Execute(&b, struct{ Transcript string }{transcript}); err != nil {
		return "", fmt.Errorf("execute minutes template: %w", err)
	}
	return b.String(), nil
}
