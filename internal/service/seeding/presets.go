package seeding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CustomPlate selects user-supplied well geometry instead of a preset.
const CustomPlate = "custom"

// PlatePreset is the geometry of one well of a plate type.
type PlatePreset struct {
	Name           string  `yaml:"name" json:"name"`
	SurfaceAreaCM2 float64 `yaml:"surface_area_cm2" json:"surface_area_cm2"`
	MediaVolumeML  float64 `yaml:"media_volume_ml" json:"media_volume_ml"`
}

// Presets is a read-only registry of plate types. It is built once and shared.
type Presets struct {
	byName map[string]PlatePreset
	order  []string
}

type presetFile struct {
	Plates []PlatePreset `yaml:"plates"`
}

var builtinPresets = []PlatePreset{
	{Name: "6-well", SurfaceAreaCM2: 9.6, MediaVolumeML: 2},
	{Name: "12-well", SurfaceAreaCM2: 3.8, MediaVolumeML: 1},
	{Name: "24-well", SurfaceAreaCM2: 1.9, MediaVolumeML: 0.5},
	{Name: "48-well", SurfaceAreaCM2: 0.95, MediaVolumeML: 0.25},
	{Name: "96-well", SurfaceAreaCM2: 0.32, MediaVolumeML: 0.1},
	{Name: "384-well", SurfaceAreaCM2: 0.08, MediaVolumeML: 0.025},
}

// DefaultPresets returns the standard multi-well plate formats.
func DefaultPresets() *Presets {
	p := &Presets{byName: make(map[string]PlatePreset, len(builtinPresets))}
	for _, preset := range builtinPresets {
		p.add(preset)
	}
	return p
}

// LoadPresets returns the default presets extended (or overridden) by the plates
// declared in the YAML file at path. An empty path yields the defaults.
func LoadPresets(path string) (*Presets, error) {
	p := DefaultPresets()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plate presets %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file presetFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plate presets %s: %w", path, err)
	}

	for i, preset := range file.Plates {
		preset.Name = strings.TrimSpace(preset.Name)
		switch {
		case preset.Name == "":
			return nil, fmt.Errorf("plate preset #%d: name is required", i+1)
		case strings.EqualFold(preset.Name, CustomPlate):
			return nil, fmt.Errorf("plate preset #%d: %q is reserved", i+1, CustomPlate)
		case preset.SurfaceAreaCM2 <= 0:
			return nil, fmt.Errorf("plate preset %q: surface_area_cm2 must be > 0", preset.Name)
		case preset.MediaVolumeML <= 0:
			return nil, fmt.Errorf("plate preset %q: media_volume_ml must be > 0", preset.Name)
		}
		p.add(preset)
	}
	return p, nil
}

func (p *Presets) add(preset PlatePreset) {
	if _, exists := p.byName[preset.Name]; !exists {
		p.order = append(p.order, preset.Name)
	}
	p.byName[preset.Name] = preset
}

// Lookup finds a preset by name.
func (p *Presets) Lookup(name string) (PlatePreset, bool) {
	preset, ok := p.byName[name]
	return preset, ok
}

// List returns the presets in declaration order.
func (p *Presets) List() []PlatePreset {
	out := make([]PlatePreset, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.byName[name])
	}
	return out
}
