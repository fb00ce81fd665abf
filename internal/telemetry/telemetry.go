package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot is one CPU/memory reading. It is a value and never mutated after
// it is sent.
type Snapshot struct {
	CPUPercent     float64   `json:"cpu_percent"`
	MemUsedPercent float64   `json:"mem_used_percent"`
	At             time.Time `json:"at"`
}

type cpuTimes struct {
	idle  uint64
	total uint64
}

// Sampler periodically reads /proc and publishes snapshots on a bounded
// channel. When the consumer falls behind the oldest snapshot is dropped.
type Sampler struct {
	interval time.Duration
	out      chan Snapshot
	logger   *slog.Logger

	statPath    string
	meminfoPath string

	prev    cpuTimes
	hasPrev bool
}

// NewSampler returns a sampler that keeps up to buffer pending snapshots.
func NewSampler(interval time.Duration, buffer int, logger *slog.Logger) *Sampler {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{
		interval:    interval,
		out:         make(chan Snapshot, buffer),
		logger:      logger,
		statPath:    "/proc/stat",
		meminfoPath: "/proc/meminfo",
	}
}

// C is the channel snapshots are published on.
func (s *Sampler) C() <-chan Snapshot {
	return s.out
}

// Run samples until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		snap, err := s.Sample()
		if err != nil {
			s.logger.Debug("telemetry: sample failed", "error", err)
		} else {
			s.publish(snap)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Sampler) publish(snap Snapshot) {
	for {
		select {
		case s.out <- snap:
			return
		default:
		}
		select {
		case <-s.out:
		default:
		}
	}
}

// Sample takes one reading. CPU usage is measured against the previous
// sample, so the first call reports 0.
func (s *Sampler) Sample() (Snapshot, error) {
	cpu, err := readCPUTimes(s.statPath)
	if err != nil {
		return Snapshot{}, err
	}
	mem, err := readMemUsed(s.meminfoPath)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{MemUsedPercent: mem, At: time.Now()}
	if s.hasPrev {
		snap.CPUPercent = cpuPercent(s.prev, cpu)
	}
	s.prev = cpu
	s.hasPrev = true
	return snap, nil
}

// Drain returns the newest pending snapshot, if any, emptying the channel.
func Drain(c <-chan Snapshot) (Snapshot, bool) {
	var (
		last Snapshot
		ok   bool
	)
	for {
		select {
		case snap := <-c:
			last, ok = snap, true
		default:
			return last, ok
		}
	}
}

func cpuPercent(prev, cur cpuTimes) float64 {
	total := cur.total - prev.total
	if cur.total <= prev.total || total == 0 {
		return 0
	}
	idle := cur.idle - prev.idle
	if cur.idle < prev.idle {
		idle = 0
	}
	return 100 * float64(total-idle) / float64(total)
}

func readCPUTimes(path string) (cpuTimes, error) {
	f, err := os.Open(path)
	if err != nil {
		return cpuTimes{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var t cpuTimes
		for i, field := range fields[1:] {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return cpuTimes{}, fmt.Errorf("parse %s: %w", path, err)
			}
			t.total += v
			// idle and iowait
			if i == 3 || i == 4 {
				t.idle += v
			}
		}
		return t, nil
	}
	if err := scanner.Err(); err != nil {
		return cpuTimes{}, err
	}
	return cpuTimes{}, fmt.Errorf("parse %s: no aggregate cpu line", path)
}

func readMemUsed(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	values := make(map[string]uint64, 2)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok || (key != "MemTotal" && key != "MemAvailable") {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s %s: %w", path, key, err)
		}
		values[key] = v
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	total, avail := values["MemTotal"], values["MemAvailable"]
	if total == 0 {
		return 0, fmt.Errorf("parse %s: MemTotal missing", path)
	}
	if avail > total {
		avail = total
	}
	return 100 * float64(total-avail) / float64(total), nil
}
