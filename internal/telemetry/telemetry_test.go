package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeProc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testSampler(t *testing.T) (*Sampler, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewSampler(time.Second, 2, nil)
	s.statPath = writeProc(t, dir, "stat", "cpu  100 0 100 700 100 0 0 0 0 0\ncpu0 1 2 3 4 5\n")
	s.meminfoPath = writeProc(t, dir, "meminfo", "MemTotal:       8000 kB\nMemFree:        1000 kB\nMemAvailable:   2000 kB\n")
	return s, dir
}

func TestSample_CPUAgainstPreviousReading(t *testing.T) {
	s, dir := testSampler(t)

	first, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if first.CPUPercent != 0 {
		t.Fatalf("expected first sample to report 0 cpu, got %v", first.CPUPercent)
	}
	if math.Abs(first.MemUsedPercent-75) > 0.001 {
		t.Fatalf("expected 75%% memory used, got %v", first.MemUsedPercent)
	}

	// +200 busy, +200 idle/iowait
	writeProc(t, dir, "stat", "cpu  200 0 200 850 150 0 0 0 0 0\n")
	second, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if math.Abs(second.CPUPercent-50) > 0.001 {
		t.Fatalf("expected 50%% cpu, got %v", second.CPUPercent)
	}
}

func TestSample_MissingMemTotal(t *testing.T) {
	s, dir := testSampler(t)
	s.meminfoPath = writeProc(t, dir, "meminfo", "MemFree: 10 kB\n")
	if _, err := s.Sample(); err == nil {
		t.Fatalf("expected error without MemTotal")
	}
}

func TestPublish_DropsOldestWhenFull(t *testing.T) {
	s := NewSampler(time.Second, 2, nil)
	for i := 1; i <= 5; i++ {
		s.publish(Snapshot{CPUPercent: float64(i)})
	}
	if len(s.C()) != 2 {
		t.Fatalf("expected channel bounded at 2, got %d", len(s.C()))
	}
	first := <-s.C()
	if first.CPUPercent != 4 {
		t.Fatalf("expected oldest kept snapshot to be 4, got %v", first.CPUPercent)
	}

	last, ok := Drain(s.C())
	if !ok || last.CPUPercent != 5 {
		t.Fatalf("expected newest snapshot 5, got %v %v", last, ok)
	}
	if _, ok := Drain(s.C()); ok {
		t.Fatalf("expected empty channel after drain")
	}
}
