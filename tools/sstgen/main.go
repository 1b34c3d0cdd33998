// SPDX-License-Identifier: BSD-3-Clause

// Command sstgen reads internal/sst/ui-options.json — the hub-owned
// options document checked into this repo — and writes
// internal/sst/generated.go, the closed-set constant table both agent
// and hub validate every tunable against. Changing a permitted value
// means editing ui-options.json and re-running this command.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

type uiOptions struct {
	UpdateIntervalsSeconds []float64 `json:"update_intervals_seconds"`
	FanStepsPercent        []int     `json:"fan_steps_percent"`
	HysteresisCelsius      []float64 `json:"hysteresis_celsius"`
	EmergencyTempsCelsius  []float64 `json:"emergency_temps_celsius"`
	FailsafeSpeedsPercent  []int     `json:"failsafe_speeds_percent"`
	LogLevels              []string  `json:"log_levels"`
}

func main() {
	in := flag.String("in", "internal/sst/ui-options.json", "path to the SST source document")
	out := flag.String("out", "internal/sst/generated.go", "path to write the generated constant table")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		log.Fatalf("sstgen: %v", err)
	}
}

func run(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	var opts uiOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("parsing %s: %w", in, err)
	}

	var b strings.Builder
	b.WriteString("// SPDX-License-Identifier: BSD-3-Clause\n\n")
	b.WriteString("package sst\n\n")
	b.WriteString("// Code generated by tools/sstgen from ui-options.json. DO NOT EDIT.\n\n")

	writeFloatSlice(&b, "UpdateIntervalsSeconds",
		"the closed set of legal telemetry update\n// intervals in seconds.", opts.UpdateIntervalsSeconds)
	writeIntSlice(&b, "FanStepsPercent",
		"the closed set of legal fan-step\n// percentages.", opts.FanStepsPercent)
	writeFloatSlice(&b, "HysteresisCelsius", "the closed set of legal hysteresis values.", opts.HysteresisCelsius)
	writeFloatSlice(&b, "EmergencyTempsCelsius", "the closed set of legal emergency temperatures.", opts.EmergencyTempsCelsius)
	writeIntSlice(&b, "FailsafeSpeedsPercent",
		"the closed set of legal failsafe speeds:\n// multiples of 10 in [0, 100].", opts.FailsafeSpeedsPercent)
	writeStringSlice(&b, "LogLevels", "the closed set of legal wire log-level names.", opts.LogLevels)

	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func writeFloatSlice(b *strings.Builder, name, doc string, values []float64) {
	sort.Float64s(values)
	fmt.Fprintf(b, "// %s is %s\nvar %s = []float64{", name, doc, name)
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%v", v)
	}
	b.WriteString("}\n\n")
}

func writeIntSlice(b *strings.Builder, name, doc string, values []int) {
	sort.Ints(values)
	fmt.Fprintf(b, "// %s is %s\nvar %s = []int{", name, doc, name)
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%d", v)
	}
	b.WriteString("}\n\n")
}

func writeStringSlice(b *strings.Builder, name, doc string, values []string) {
	fmt.Fprintf(b, "// %s is %s\nvar %s = []string{", name, doc, name)
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%q", v)
	}
	b.WriteString("}\n\n")
}
