package header

import (
	"errors"
	"sync"
	"testing"

	"firestige.xyz/craft/internal/core"
)

func testDescriptor(tag string) Descriptor {
	d := &struct{ Layout }{Layout: NewLayout(tag, tag, []Field{
		U8("Kind", 0),
		U16("Length", 1),
	})}
	return d
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(testDescriptor("proto-a")); err != nil {
		t.Fatalf("register: %v", err)
	}

	d, err := r.Lookup("proto-a")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if d.Tag() != "proto-a" {
		t.Errorf("lookup returned tag %q", d.Tag())
	}
}

func TestRegistryDuplicateTag(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(testDescriptor("proto-a")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.Register(testDescriptor("proto-a"))
	if !errors.Is(err, core.ErrDuplicateProtocol) {
		t.Fatalf("expected ErrDuplicateProtocol, got %v", err)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Lookup("nope")
	if !errors.Is(err, core.ErrProtocolNotFound) {
		t.Fatalf("expected ErrProtocolNotFound, got %v", err)
	}
}

func TestRegistryTagsSorted(t *testing.T) {
	r := NewRegistry()
	for _, tag := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(testDescriptor(tag)); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}

	tags := r.Tags()
	want := []string{"alpha", "mid", "zeta"}
	if len(tags) != len(want) {
		t.Fatalf("got %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

// Lookups from many goroutines against a populated registry, the
// documented init-then-read pattern.
func TestRegistryConcurrentLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(testDescriptor("proto-a")); err != nil {
		t.Fatalf("register: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if _, err := r.Lookup("proto-a"); err != nil {
					t.Errorf("lookup: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
