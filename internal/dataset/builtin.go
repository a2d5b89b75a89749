package dataset

import (
	"bytes"
	_ "embed"
	"fmt"
)

// motortrendCSV is the 1974 Motor Trend road-test table: fuel economy
// in miles per gallon for 32 cars, by cylinder count and transmission.
//
//go:embed motortrend.csv
var motortrendCSV []byte

// BuiltinNames lists the bundled datasets.
func BuiltinNames() []string {
	return []string{"motortrend"}
}

// Builtin loads a bundled dataset by name.
func Builtin(name string) (*Dataset, error) {
	switch name {
	case "motortrend":
		ds, err := ReadCSV(bytes.NewReader(motortrendCSV), name, Columns{
			X:      "cylinders",
			Series: "transmission",
			Value:  "mpg",
		})
		if err != nil {
			return nil, fmt.Errorf("load builtin %s: %w", name, err)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("unknown builtin dataset: %s", name)
	}
}
