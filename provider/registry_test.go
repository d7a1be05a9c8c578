package provider

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct{ name string }

func (f *fakeProvider) Name() string                       { return f.name }
func (f *fakeProvider) IsAvailable(_ context.Context) bool { return true }

func TestRegistry_CreateFromFactory(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		name, _ := cfg["name"].(string)
		return &fakeProvider{name: name}, nil
	})

	p, err := reg.Create("fake", map[string]any{"name": "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name() != "a" {
		t.Errorf("expected name a, got %s", p.Name())
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	if _, err := reg.Create("missing", nil); err == nil {
		t.Error("expected error for unregistered name")
	}
}

func TestRegistry_CreateCachesInstance(t *testing.T) {
	builds := 0
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		builds++
		return &fakeProvider{name: "fake"}, nil
	})

	first, err := reg.Create("fake", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := reg.Create("fake", nil)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first != second {
		t.Error("expected the same instance from repeated Create")
	}
	if builds != 1 {
		t.Errorf("expected one factory call, got %d", builds)
	}

	got, ok := reg.Get("fake")
	if !ok || got != first {
		t.Errorf("expected Get to return the built instance, got %v ok=%v", got, ok)
	}
}

func TestRegistry_FactoryErrorNotCached(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("flaky", func(cfg map[string]any) (*fakeProvider, error) {
		return nil, errors.New("bad config")
	})

	if _, err := reg.Create("flaky", nil); err == nil {
		t.Fatal("expected factory error")
	}
	if _, ok := reg.Get("flaky"); ok {
		t.Error("failed build must not be cached")
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	for _, n := range []string{"b", "a", "c"} {
		reg.RegisterFactory(n, func(cfg map[string]any) (*fakeProvider, error) {
			return &fakeProvider{}, nil
		})
	}
	got := reg.Names()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
