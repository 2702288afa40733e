// Package scenario reads and writes colored MAPF problems as YAML.
//
// A scenario lists grid rows as strings of '.' (free) and '@' (blocked)
// followed by colored agent starts and goals:
//
//	name: crossing
//	grid:
//	  - "...."
//	  - ".@@."
//	agents:
//	  - {row: 0, col: 0, color: 0}
//	goals:
//	  - {row: 1, col: 3, color: 0}
package scenario

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/mapfm-sat/internal/core"
)

const (
	FreeCell    = '.'
	BlockedCell = '@'
)

// MaxFileSize caps scenario files read by Load.
const MaxFileSize = 16 << 20

var validate = validator.New()

// Point is a colored cell.
type Point struct {
	Row   int `yaml:"row" validate:"gte=0"`
	Col   int `yaml:"col" validate:"gte=0"`
	Color int `yaml:"color" validate:"gte=0"`
}

// File is the on-disk scenario.
type File struct {
	Name   string   `yaml:"name,omitempty"`
	Seed   int64    `yaml:"seed,omitempty"`
	Grid   []string `yaml:"grid" validate:"required,min=1,dive,required"`
	Agents []Point  `yaml:"agents" validate:"required,min=1,dive"`
	Goals  []Point  `yaml:"goals" validate:"required,min=1,dive"`
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads a scenario file.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat scenario: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("scenario %s too large: %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes a scenario file.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the structure and the grid characters.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidInstance, err)
	}
	for i, row := range f.Grid {
		if j := strings.IndexFunc(row, func(r rune) bool { return r != FreeCell && r != BlockedCell }); j >= 0 {
			return fmt.Errorf("%w: row %d col %d: unexpected %q", core.ErrMalformedGrid, i, j, row[j])
		}
	}
	return nil
}

// ToInstance converts the scenario into a problem instance.
func (f *File) ToInstance() (*core.Instance, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	inst := &core.Instance{Name: f.Name, Grid: make([][]bool, len(f.Grid))}
	for i, row := range f.Grid {
		inst.Grid[i] = make([]bool, len(row))
		for j := range row {
			inst.Grid[i][j] = row[j] == BlockedCell
		}
	}
	for _, p := range f.Agents {
		inst.AddAgent(p.Row, p.Col, core.Color(p.Color))
	}
	for _, p := range f.Goals {
		inst.AddGoal(p.Row, p.Col, core.Color(p.Color))
	}
	if _, err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// FromInstance converts an instance into its file form.
func FromInstance(inst *core.Instance) *File {
	f := &File{Name: inst.Name, Grid: make([]string, len(inst.Grid))}
	for i, row := range inst.Grid {
		var sb strings.Builder
		for _, blocked := range row {
			if blocked {
				sb.WriteByte(BlockedCell)
			} else {
				sb.WriteByte(FreeCell)
			}
		}
		f.Grid[i] = sb.String()
	}
	for _, m := range inst.Starts {
		f.Agents = append(f.Agents, Point{Row: m.Row, Col: m.Col, Color: int(m.Color)})
	}
	for _, m := range inst.Goals {
		f.Goals = append(f.Goals, Point{Row: m.Row, Col: m.Col, Color: int(m.Color)})
	}
	return f
}
