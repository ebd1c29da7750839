package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"

	"github.com/tscal-dev/tscal/pkg/calibration"
)

// parseTransformArgs parses six coefficients. Each accepts decimal or a
// 0x prefixed hex value and must fit in an int32.
func parseTransformArgs(args []string) (calibration.TouchTransform, error) {
	var t calibration.TouchTransform
	if len(args) != len(t) {
		return t, fmt.Errorf("expected %d coefficients, got %d", len(t), len(args))
	}

	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 32)
		if err != nil {
			return t, fmt.Errorf("invalid coefficient %c: %v", 'A'+i, err)
		}
		t[i] = int32(v)
	}

	return t, nil
}

// formatCoefficient renders a 16.16 fixed point value.
func formatCoefficient(v int32) string {
	return fmt.Sprintf("%d (%.5f)", v, float64(v)/65536)
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
