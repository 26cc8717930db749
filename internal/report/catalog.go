package report

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// defaultVolumeDigits applies to any symbol missing from the catalog.
const defaultVolumeDigits = 5

// SymbolInfo is one catalog entry.
type SymbolInfo struct {
	Name         string `yaml:"name"`
	VolumeDigits int32  `yaml:"volume_digits"`
}

// Catalog maps venue symbol ids to display names and volume scaling.
// It is immutable after construction and safe to share across sessions.
type Catalog struct {
	symbols map[int64]SymbolInfo
}

// DefaultCatalog returns the built-in symbol table.
func DefaultCatalog() *Catalog {
	return &Catalog{symbols: map[int64]SymbolInfo{
		5:     {Name: "AUDUSD", VolumeDigits: 5},
		12:    {Name: "NZDUSD", VolumeDigits: 5},
		41:    {Name: "XAUUSD", VolumeDigits: 2},
		10026: {Name: "BTCUSD", VolumeDigits: 0},
	}}
}

// LoadCatalog reads a yaml symbol table, replacing the built-in defaults
// for any id it lists.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries map[int64]SymbolInfo
	if err := yaml.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse symbol catalog %s: %w", path, err)
	}
	cat := DefaultCatalog()
	for id, info := range entries {
		cat.symbols[id] = info
	}
	return cat, nil
}

// Name returns the display name for a symbol id, "N/A" when unknown.
func (c *Catalog) Name(symbolID int64) string {
	if info, ok := c.symbols[symbolID]; ok {
		return info.Name
	}
	return "N/A"
}

// VolumeDigits returns the per-symbol volume digit count.
func (c *Catalog) VolumeDigits(symbolID int64) int32 {
	if info, ok := c.symbols[symbolID]; ok {
		return info.VolumeDigits
	}
	return defaultVolumeDigits
}

// Volume descales a raw deal volume into lots. The divisor combines the
// response-level money digits with the per-symbol volume digits.
func (c *Catalog) Volume(symbolID int64, volume int64, moneyDigits uint32) decimal.Decimal {
	return decimal.New(volume, -(int32(moneyDigits) + c.VolumeDigits(symbolID)))
}
