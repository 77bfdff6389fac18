package metrics

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCounters(t *testing.T) {
	mx := NewMetrics()
	mx.Increment("renamed")
	mx.Increment("renamed")
	mx.Add("collisions", 3)
	stop := mx.Record("exif")
	stop()

	cases := []struct {
		name     string
		expected int64
	}{
		{name: "renamed", expected: 2},
		{name: "collisions", expected: 3},
		{name: "never", expected: 0},
	}
	for _, c := range cases {
		if got := mx.Count(c.name); got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
		}
	}

	core, logs := observer.New(zapcore.InfoLevel)
	mx.Report(zap.New(core))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected one report entry but got %v instead", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["renamed"] != int64(2) || fields["collisions"] != int64(3) {
		t.Errorf("Unexpected report fields %v", fields)
	}
	if _, ok := fields["exif_time"]; !ok {
		t.Errorf("Expected a timing for exif in %v", fields)
	}
}

func TestNoMetrics(t *testing.T) {
	mx := NoMetrics()
	mx.Increment("renamed")
	mx.Record("exif")()

	if got := mx.Count("renamed"); got != 0 {
		t.Errorf("Expected 0 but got %v instead", got)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	mx.Report(zap.New(core))
	if logs.Len() != 0 {
		t.Errorf("Expected no report from NoMetrics")
	}
}
