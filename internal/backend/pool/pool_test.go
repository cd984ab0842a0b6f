package pool

import (
	"bytes"
	"testing"

	"github.com/strand-hpc/strand/internal/device"
	"github.com/strand-hpc/strand/internal/parallel"
)

func TestRegistered(t *testing.T) {
	mem, err := device.New(Tag{})
	if err != nil {
		t.Fatalf("device.New failed: %v", err)
	}
	if mem.Shared() {
		t.Error("pool memory is private; Shared should report false")
	}
	if _, ok := mem.(device.Aliaser); ok {
		t.Error("pool memory must not alias control storage")
	}
	if _, ok := mem.(device.Copier); !ok {
		t.Error("pool memory should provide a chunked Copy")
	}
}

func TestCopyChunked(t *testing.T) {
	src := make([]byte, 256*1024)
	for i := range src {
		src[i] = byte(i)
	}
	dst := make([]byte, len(src))

	m := &memory{cfg: parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1024}}
	m.Copy(dst, src)
	if !bytes.Equal(dst, src) {
		t.Error("chunked Copy did not reproduce the source")
	}

	// Mismatched lengths copy the shorter span.
	short := make([]byte, 10)
	m.Copy(short, src)
	if !bytes.Equal(short, src[:10]) {
		t.Error("Copy into a shorter destination should fill it")
	}
}

func TestAllocateReusesCapacity(t *testing.T) {
	m := &memory{cfg: parallel.DefaultConfig()}
	if err := m.Allocate(128); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	first, _ := m.HostBytes()
	if err := m.Allocate(64); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	second, _ := m.HostBytes()
	if len(second) != 64 {
		t.Errorf("len = %d, want 64", len(second))
	}
	if &first[0] != &second[0] {
		t.Error("smaller Allocate should reuse the buffer")
	}
}

func TestConfigure(t *testing.T) {
	old := config
	defer Configure(old)

	cfg := parallel.Config{Enabled: false}
	Configure(cfg)
	mem, err := device.New(Tag{})
	if err != nil {
		t.Fatalf("device.New failed: %v", err)
	}
	if mem.(*memory).cfg.Enabled {
		t.Error("Configure should apply to memories created afterwards")
	}
}
