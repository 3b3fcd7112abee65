package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/spend-insights/internal/domain"
)

// catalogFile is the YAML layout of an alternate category set:
//
//	categories:
//	  - id: relevant_spend
//	    name: Relevant Spend
//	    filter: {column: "Relevant Merchant?", value: "y"}
//	  - id: all_spend
//	    name: All Spend
//
// Filter values keep their YAML type: "y" is text, true is a boolean and
// 1 is a number. A category without a pivot uses StandardPivot.
type catalogFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Filter *filterEntry `yaml:"filter,omitempty"`
	Pivot  *pivotEntry  `yaml:"pivot,omitempty"`
}

type filterEntry struct {
	Column string `yaml:"column"`
	Value  any    `yaml:"value"`
}

type pivotEntry struct {
	Index    []string       `yaml:"index"`
	Measures []measureEntry `yaml:"measures"`
	SortBy   string         `yaml:"sort_by"`
}

type measureEntry struct {
	Column string `yaml:"column"`
	Func   string `yaml:"func"`
	Label  string `yaml:"label"`
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %q: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Categories) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no categories")
	}

	defs := make([]Definition, 0, len(file.Categories))
	for _, e := range file.Categories {
		d := Definition{
			ID:    CategoryID(e.ID),
			Name:  e.Name,
			Pivot: StandardPivot(),
		}
		if e.Filter != nil {
			v, err := domain.ValueOf(e.Filter.Value)
			if err != nil {
				return Catalog{}, fmt.Errorf("category %q: filter value: %w", e.ID, err)
			}
			d.Filter = &FilterSpec{Column: e.Filter.Column, Value: v}
		}
		if e.Pivot != nil {
			p := PivotSpec{Index: e.Pivot.Index, SortBy: e.Pivot.SortBy}
			for _, m := range e.Pivot.Measures {
				p.Measures = append(p.Measures, Measure{Column: m.Column, Func: AggFunc(m.Func), Label: m.Label})
			}
			d.Pivot = p
		}
		defs = append(defs, d)
	}

	return NewCatalog(defs)
}

// MarshalCatalog encodes c in the layout ParseCatalog reads. Categories on
// the standard pivot omit it.
func MarshalCatalog(c Catalog) ([]byte, error) {
	var file catalogFile
	for _, d := range c.Definitions() {
		e := categoryEntry{ID: string(d.ID), Name: d.Name}
		if d.Filter != nil {
			e.Filter = &filterEntry{Column: d.Filter.Column, Value: d.Filter.Value.Interface()}
		}
		if !isStandardPivot(d.Pivot) {
			p := &pivotEntry{Index: d.Pivot.Index, SortBy: d.Pivot.SortBy}
			for _, m := range d.Pivot.Measures {
				p.Measures = append(p.Measures, measureEntry{Column: m.Column, Func: string(m.Func), Label: m.Label})
			}
			e.Pivot = p
		}
		file.Categories = append(file.Categories, e)
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return out, nil
}

func isStandardPivot(p PivotSpec) bool {
	std := StandardPivot()
	if p.SortBy != std.SortBy || len(p.Index) != len(std.Index) || len(p.Measures) != len(std.Measures) {
		return false
	}
	for i := range p.Index {
		if p.Index[i] != std.Index[i] {
			return false
		}
	}
	for i := range p.Measures {
		if p.Measures[i] != std.Measures[i] {
			return false
		}
	}
	return true
}
