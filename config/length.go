package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

var units = []struct {
	suffix string
	unit   layout.Unit
}{
	{"pt", layout.Pt},
	{"in", layout.In},
	{"cm", layout.Cm},
	{"mm", layout.Mm},
	{"px", layout.Px},
}

// ParseLength parses auto, a percentage (50%), a grid fraction (1fr) or an
// absolute length. Bare numbers are points.
func ParseLength(s string) (layout.Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "auto":
		return layout.Auto(), nil
	case strings.HasSuffix(s, "%"):
		v, err := parseNumber(s, strings.TrimSuffix(s, "%"))
		return layout.Percent(v), err
	case strings.HasSuffix(s, "fr"):
		v, err := parseNumber(s, strings.TrimSuffix(s, "fr"))
		return layout.Fraction(v), err
	}
	v, err := parsePoints(s)
	return layout.Points(v), err
}

func parsePoints(s string) (float64, error) {
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			v, err := parseNumber(s, strings.TrimSuffix(s, u.suffix))
			return layout.ToPoints(v, u.unit), err
		}
	}
	return parseNumber(s, s)
}

func parseNumber(whole, number string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil {
		return 0, fmt.Errorf("%w '%s'", ErrInvalidLength, whole)
	}
	return v, nil
}

// ParseMargins parses the CSS edge shorthand: one value for all sides, two
// for vertical and horizontal, three for top, horizontal and bottom, four
// for top, right, bottom and left. Only absolute lengths are allowed.
func ParseMargins(s string) (layout.Margins, error) {
	fields := strings.Fields(s)
	v := make([]float64, len(fields))
	for i, f := range fields {
		p, err := parsePoints(strings.ToLower(f))
		if err != nil {
			return layout.Margins{}, err
		}
		v[i] = p
	}
	switch len(v) {
	case 1:
		return layout.UniformMargins(v[0]), nil
	case 2:
		return layout.NewMargins(v[0], v[1], v[0], v[1]), nil
	case 3:
		return layout.NewMargins(v[0], v[1], v[2], v[1]), nil
	case 4:
		return layout.NewMargins(v[0], v[1], v[2], v[3]), nil
	}
	return layout.Margins{}, fmt.Errorf("%w '%s': want one to four values", ErrInvalidLength, s)
}

// Length is a layout.Length read from YAML.
type Length layout.Length

// UnmarshalYAML accepts numbers (points) and strings understood by
// ParseLength.
func (l *Length) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: %w: expected a scalar", value.Line, ErrInvalidLength)
	}
	v, err := ParseLength(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*l = Length(v)
	return nil
}

// Edges is a layout.Margins read from YAML, either as a shorthand string or
// as a mapping of sides.
type Edges layout.Margins

// UnmarshalYAML decodes the shorthand or a top/right/bottom/left mapping.
func (e *Edges) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		m, err := ParseMargins(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*e = Edges(m)
		return nil
	case yaml.MappingNode:
		var sides struct {
			Top, Right, Bottom, Left string
		}
		if err := value.Decode(&sides); err != nil {
			return err
		}
		var m layout.Margins
		for _, side := range []struct {
			src string
			dst *float64
		}{
			{sides.Top, &m.Top}, {sides.Right, &m.Right}, {sides.Bottom, &m.Bottom}, {sides.Left, &m.Left},
		} {
			if side.src == "" {
				continue
			}
			v, err := parsePoints(strings.ToLower(side.src))
			if err != nil {
				return fmt.Errorf("line %d: %w", value.Line, err)
			}
			*side.dst = v
		}
		*e = Edges(m)
		return nil
	}
	return fmt.Errorf("line %d: %w: expected a string or a mapping", value.Line, ErrInvalidLength)
}
