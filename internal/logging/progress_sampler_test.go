package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		want       float64
	}{
		{"zero uses default", 0, 5},
		{"negative uses default", -3, 5},
		{"custom", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.want {
				t.Fatalf("bucketSize = %v, want %v", s.bucketSize, tt.want)
			}
		})
	}
}

func TestProgressSamplerNilAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("translate", 42) {
		t.Fatal("nil sampler should always log")
	}
	s.Reset()
}

func TestProgressSamplerBucketsWithinStage(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		stage   string
		percent float64
		want    bool
	}{
		{"translate", 0, true},
		{"translate", 4, false},
		{"translate", 10, true},
		{"translate", 19.9, false},
		{"translate", 25, true},
		{"synthesize", 25, true},
		{"synthesize", 26, false},
		{"  synthesize ", 31, true},
		{"synthesize", -1, false},
		{"synthesize", 150, true},
	}
	for i, step := range steps {
		if got := s.ShouldLog(step.stage, step.percent); got != step.want {
			t.Fatalf("step %d (%s %.1f): got %v, want %v", i, step.stage, step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog("composite", 50)
	s.Reset()
	if !s.ShouldLog("composite", 50) {
		t.Fatal("expected log after reset")
	}
}
