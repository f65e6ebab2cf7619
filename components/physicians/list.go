package physicians

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/field"
)

//go:embed data/physicians.yaml
var dataFS embed.FS

const defaultListPath = "data/physicians.yaml"

// Physician is one entry of the directory.
type Physician struct {
	Name  string `yaml:"name" json:"name"`
	Image string `yaml:"image" json:"image"`
}

// Option converts the physician to a select option keyed by name.
func (p Physician) Option() field.Option {
	return field.Option{Value: p.Name, Label: p.Name, Image: p.Image}
}

var (
	defaultOnce       sync.Once
	defaultPhysicians []Physician
	defaultErr        error
)

// Default returns a copy of the embedded directory.
func Default() ([]Physician, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		list, err := Load(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultPhysicians = list
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Physician{}, defaultPhysicians...), nil
}

// Load decodes a YAML list of physicians. Blank names are skipped and
// duplicate names keep the first entry. Declaration order is preserved.
func Load(r io.Reader) ([]Physician, error) {
	if r == nil {
		return nil, fmt.Errorf("physicians: missing reader")
	}

	var raw []Physician
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("physicians: decode list: %w", err)
	}

	out := make([]Physician, 0, len(raw))
	seen := map[string]struct{}{}
	for _, p := range raw {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		key := strings.ToLower(p.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		p.Image = strings.TrimSpace(p.Image)
		out = append(out, p)
	}
	return out, nil
}

// FieldOptions returns the embedded directory as select options.
func FieldOptions() ([]field.Option, error) {
	list, err := Default()
	if err != nil {
		return nil, err
	}
	return toOptions(list), nil
}

func toOptions(list []Physician) []field.Option {
	out := make([]field.Option, 0, len(list))
	for _, p := range list {
		out = append(out, p.Option())
	}
	return out
}
