package client

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// numberFlag holds a numeric flag as the text the user typed, so "4.0" stays
// "4.0" when it becomes a selection.
type numberFlag struct {
	value string
	min   float64
	max   float64
}

var _ pflag.Value = (*numberFlag)(nil)

func newNumberFlag(def string, min, max float64) *numberFlag {
	return &numberFlag{value: def, min: min, max: max}
}

func (f *numberFlag) String() string {
	return f.value
}

func (f *numberFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%q is not a number", s)
	}
	if v < f.min || v > f.max {
		return fmt.Errorf("%s is outside [%s, %s]", s, formatBound(f.min), formatBound(f.max))
	}
	f.value = s
	return nil
}

func (f *numberFlag) Type() string {
	return "number"
}

func formatBound(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
