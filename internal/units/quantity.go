package units

import "fmt"

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func Q(value float64, unit string) Quantity {
	return Quantity{Value: value, Unit: unit}
}

func (q Quantity) Convert(target string) (Quantity, error) {
	f, err := ConversionFactor(q.Unit, target)
	if err != nil {
		return Quantity{}, fmt.Errorf("convert quantity: %w", err)
	}
	return Quantity{Value: q.Value * f, Unit: target}, nil
}

func (q Quantity) String() string {
	return fmt.Sprintf("%g %s", q.Value, q.Unit)
}

// Array is a unit-tagged series of values, used for scan dimensions.
type Array struct {
	Values []float64 `json:"values"`
	Unit   string    `json:"unit"`
}

func A(values []float64, unit string) Array {
	return Array{Values: values, Unit: unit}
}

func (a Array) Convert(target string) (Array, error) {
	f, err := ConversionFactor(a.Unit, target)
	if err != nil {
		return Array{}, fmt.Errorf("convert array: %w", err)
	}
	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		out[i] = v * f
	}
	return Array{Values: out, Unit: target}, nil
}
