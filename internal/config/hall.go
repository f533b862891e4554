package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Table types rendered by the seating chart.
const (
	TableVIP    = "vip"
	TableSofa   = "sofa"
	TableWindow = "window"
	TableBar    = "bar"
)

// TableConfig describes one table of the static venue layout. X and Y are
// percentages of the hall plan, carried for whatever renderer consumes them.
type TableConfig struct {
	ID       int    `yaml:"id"`
	Label    string `yaml:"label"`
	Type     string `yaml:"type"`
	Seats    int    `yaml:"seats"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	MinOrder int    `yaml:"min_order"`
}

// TypeName returns the human-readable name of the table type.
func (t *TableConfig) TypeName() string {
	switch t.Type {
	case TableVIP:
		return "VIP Lounge"
	case TableSofa:
		return "Диван"
	case TableWindow:
		return "У окна"
	case TableBar:
		return "Бар"
	}
	return t.Type
}

// HallConfig is the root of hall.yaml: the read-only venue layout. The
// booking core treats it as reference data and never mutates it.
type HallConfig struct {
	Tables []TableConfig `yaml:"tables"`
}

// LoadHall loads and validates the hall layout from YAML.
func LoadHall(path string) (*HallConfig, error) {
	if path == "" {
		path = "configs/hall.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hall config: %w", err)
	}

	var cfg HallConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse hall config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate hall config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks the layout for errors.
func (c *HallConfig) Validate() error {
	if len(c.Tables) == 0 {
		return fmt.Errorf("no tables defined")
	}

	ids := make(map[int]bool)
	for i, t := range c.Tables {
		if t.ID <= 0 {
			return fmt.Errorf("table[%d]: id must be positive, got %d", i, t.ID)
		}
		if ids[t.ID] {
			return fmt.Errorf("table[%d]: duplicate id %d", i, t.ID)
		}
		ids[t.ID] = true

		if t.Label == "" {
			return fmt.Errorf("table[%d]: label is required", i)
		}

		switch t.Type {
		case TableVIP, TableSofa, TableWindow, TableBar:
		default:
			return fmt.Errorf("table[%d]: unknown type %q", i, t.Type)
		}

		if t.X < 0 || t.X > 100 || t.Y < 0 || t.Y > 100 {
			return fmt.Errorf("table[%d]: coordinates must be within 0-100, got (%d, %d)", i, t.X, t.Y)
		}
		if t.MinOrder < 0 {
			return fmt.Errorf("table[%d]: min_order cannot be negative", i)
		}
	}
	return nil
}

func (c *HallConfig) applyDefaults() {
	for i := range c.Tables {
		if c.Tables[i].Seats == 0 {
			c.Tables[i].Seats = 2
		}
	}
}

// TableByID returns the table config by id, or nil.
func (c *HallConfig) TableByID(id int) *TableConfig {
	for i := range c.Tables {
		if c.Tables[i].ID == id {
			return &c.Tables[i]
		}
	}
	return nil
}

// TablesOfType returns tables of the given type.
func (c *HallConfig) TablesOfType(tableType string) []TableConfig {
	result := make([]TableConfig, 0)
	for _, t := range c.Tables {
		if t.Type == tableType {
			result = append(result, t)
		}
	}
	return result
}

// String returns a summary of the layout.
func (c *HallConfig) String() string {
	vip := len(c.TablesOfType(TableVIP))
	return fmt.Sprintf("HallConfig: %d tables (%d vip)", len(c.Tables), vip)
}

// DefaultHall returns the built-in nine-table layout used when hall.yaml is
// absent. Mirrors configs/hall.yaml.
func DefaultHall() *HallConfig {
	cfg := &HallConfig{Tables: []TableConfig{
		{ID: 1, Label: "Стол 1", Type: TableWindow, Seats: 2, X: 18, Y: 22, MinOrder: 1500},
		{ID: 2, Label: "Стол 2", Type: TableWindow, Seats: 2, X: 18, Y: 45, MinOrder: 1500},
		{ID: 3, Label: "Стол 3", Type: TableSofa, Seats: 4, X: 40, Y: 30, MinOrder: 2500},
		{ID: 4, Label: "Стол 4", Type: TableSofa, Seats: 4, X: 40, Y: 58, MinOrder: 2500},
		{ID: 5, Label: "Стол 5", Type: TableSofa, Seats: 6, X: 62, Y: 40, MinOrder: 3000},
		{ID: 6, Label: "Стол 6", Type: TableWindow, Seats: 2, X: 18, Y: 68, MinOrder: 1500},
		{ID: 7, Label: "VIP", Type: TableVIP, Seats: 8, X: 62, Y: 70, MinOrder: 5000},
		{ID: 8, Label: "Бар 1", Type: TableBar, Seats: 1, X: 85, Y: 30, MinOrder: 800},
		{ID: 9, Label: "Бар 2", Type: TableBar, Seats: 1, X: 85, Y: 50, MinOrder: 800},
	}}
	cfg.applyDefaults()
	return cfg
}
