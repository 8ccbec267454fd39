// Package unitconv converts values between units of length, weight,
// temperature, and volume.
package unitconv

import (
	"context"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "UnitConverter"

const (
	OpConvert   = "convert"
	OpListUnits = "list_units"
)

const (
	CategoryLength      = "length"
	CategoryWeight      = "weight"
	CategoryTemperature = "temperature"
	CategoryVolume      = "volume"
)

// factors to the base unit of each linear category:
// meters, grams, liters
var linearUnits = map[string]struct {
	category string
	factor   float64
}{
	"mm":   {CategoryLength, 0.001},
	"cm":   {CategoryLength, 0.01},
	"m":    {CategoryLength, 1},
	"km":   {CategoryLength, 1000},
	"in":   {CategoryLength, 0.0254},
	"ft":   {CategoryLength, 0.3048},
	"yd":   {CategoryLength, 0.9144},
	"mi":   {CategoryLength, 1609.344},
	"mg":   {CategoryWeight, 0.001},
	"g":    {CategoryWeight, 1},
	"kg":   {CategoryWeight, 1000},
	"oz":   {CategoryWeight, 28.349523125},
	"lb":   {CategoryWeight, 453.59237},
	"t":    {CategoryWeight, 1000000},
	"ml":   {CategoryVolume, 0.001},
	"l":    {CategoryVolume, 1},
	"gal":  {CategoryVolume, 3.785411784},
	"qt":   {CategoryVolume, 0.946352946},
	"pt":   {CategoryVolume, 0.473176473},
	"cup":  {CategoryVolume, 0.2365882365},
	"floz": {CategoryVolume, 0.0295735295625},
}

var temperatureUnits = map[string]bool{
	"c": true,
	"f": true,
	"k": true,
}

// Request represents the tool input.
type Request struct {
	Operation string  `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=convert,enum=list_units" validate:"required,oneof=convert list_units"`
	Value     float64 `json:"value,omitempty" yaml:"value,omitempty" jsonschema:"title=value,description=The numeric value to convert."`
	FromUnit  string  `json:"from_unit,omitempty" yaml:"from_unit,omitempty" jsonschema:"title=from_unit,description=The source unit (e.g. 'km'; 'lb'; 'c')."`
	ToUnit    string  `json:"to_unit,omitempty" yaml:"to_unit,omitempty" jsonschema:"title=to_unit,description=The target unit (e.g. 'mi'; 'kg'; 'f')."`
	Category  string  `json:"category,omitempty" yaml:"category,omitempty" jsonschema:"title=category,description=Restrict listed units to one category.,enum=length,enum=weight,enum=temperature,enum=volume" validate:"omitempty,oneof=length weight temperature volume"`
}

// Conversion is a completed unit conversion.
type Conversion struct {
	Value          float64 `json:"value" yaml:"value"`
	FromUnit       string  `json:"from_unit" yaml:"from_unit"`
	ToUnit         string  `json:"to_unit" yaml:"to_unit"`
	ConvertedValue float64 `json:"converted_value" yaml:"converted_value"`
	Category       string  `json:"category" yaml:"category"`
}

// Response represents the tool output.
type Response struct {
	Conversion *Conversion         `json:"conversion,omitempty" yaml:"conversion,omitempty"`
	Units      map[string][]string `json:"units,omitempty" yaml:"units,omitempty"`
}

// Tool converts between measurement units. It keeps no state.
type Tool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[Request, Response] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Converts values between units of length, weight, temperature, and volume.",
		funcParams:  sc.Parameters,
	}, nil
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }
func (t *Tool) Parameters() any     { return t.funcParams }

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t, input)
}

func (t *Tool) Run(_ context.Context, req *Request) (*Response, error) {
	switch req.Operation {
	case OpConvert:
		conv, err := convert(req.Value, req.FromUnit, req.ToUnit)
		if err != nil {
			return nil, err
		}
		return &Response{Conversion: conv}, nil

	case OpListUnits:
		units := map[string][]string{}
		for unit, def := range linearUnits {
			if req.Category != "" && def.category != req.Category {
				continue
			}
			units[def.category] = append(units[def.category], unit)
		}
		if req.Category == "" || req.Category == CategoryTemperature {
			units[CategoryTemperature] = []string{"c", "f", "k"}
		}
		for _, list := range units {
			sort.Strings(list)
		}
		return &Response{Units: units}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func convert(value float64, fromUnit, toUnit string) (*Conversion, error) {
	from := strings.ToLower(strings.TrimSpace(fromUnit))
	to := strings.ToLower(strings.TrimSpace(toUnit))
	if from == "" || to == "" {
		return nil, errors.New("from_unit and to_unit are required")
	}

	if temperatureUnits[from] || temperatureUnits[to] {
		if !temperatureUnits[from] || !temperatureUnits[to] {
			return nil, errors.Errorf("cannot convert between different categories: %s and %s", from, to)
		}
		converted, err := convertTemperature(value, from, to)
		if err != nil {
			return nil, err
		}
		return &Conversion{
			Value:          value,
			FromUnit:       from,
			ToUnit:         to,
			ConvertedValue: round4(converted),
			Category:       CategoryTemperature,
		}, nil
	}

	fromDef, ok := linearUnits[from]
	if !ok {
		return nil, errors.Errorf("unknown unit: %s", from)
	}
	toDef, ok := linearUnits[to]
	if !ok {
		return nil, errors.Errorf("unknown unit: %s", to)
	}
	if fromDef.category != toDef.category {
		return nil, errors.Errorf("cannot convert between different categories: %s and %s", fromDef.category, toDef.category)
	}

	return &Conversion{
		Value:          value,
		FromUnit:       from,
		ToUnit:         to,
		ConvertedValue: round4(value * fromDef.factor / toDef.factor),
		Category:       fromDef.category,
	}, nil
}

func convertTemperature(value float64, from, to string) (float64, error) {
	var celsius float64
	switch from {
	case "c":
		celsius = value
	case "f":
		celsius = (value - 32) * 5 / 9
	case "k":
		celsius = value - 273.15
	}

	switch to {
	case "c":
		return celsius, nil
	case "f":
		return celsius*9/5 + 32, nil
	case "k":
		return celsius + 273.15, nil
	}
	return 0, errors.Errorf("unknown unit: %s", to)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
