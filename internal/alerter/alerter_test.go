package alerter

import (
	"strings"
	"testing"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/sysmon"
)

func TestEvaluate(t *testing.T) {
	rules := []config.AlerterRule{
		{Metric: "cpu_percent", Threshold: 90},
		{Metric: "memory_percent", Threshold: 90},
		{Metric: "disk_percent", Threshold: 85},
	}
	sample := &sysmon.Sample{
		CPUPercent:    95.5,
		MemoryPercent: 40.0,
		DiskPercent:   86.1,
	}

	messages := Evaluate(rules, sample)

	if len(messages) != 2 {
		t.Fatalf("Expected 2 violations, got %d: %v", len(messages), messages)
	}
	if !strings.Contains(messages[0], "cpu_percent at 95.5%") {
		t.Errorf("Unexpected cpu message: %q", messages[0])
	}
	if !strings.Contains(messages[1], "disk_percent at 86.1%") {
		t.Errorf("Unexpected disk message: %q", messages[1])
	}
}

func TestEvaluateNoViolations(t *testing.T) {
	rules := []config.AlerterRule{{Metric: "cpu_percent", Threshold: 90}}
	sample := &sysmon.Sample{CPUPercent: 10}

	if messages := Evaluate(rules, sample); len(messages) != 0 {
		t.Errorf("Expected no violations, got %v", messages)
	}
}

func TestEvaluateSkipsUnknownMetric(t *testing.T) {
	rules := []config.AlerterRule{
		{Metric: "load_average", Threshold: 1},
		{Metric: "cpu_percent", Threshold: 50},
	}
	sample := &sysmon.Sample{CPUPercent: 75}

	messages := Evaluate(rules, sample)

	if len(messages) != 1 {
		t.Fatalf("Expected the unknown metric to be skipped, got %v", messages)
	}
}
