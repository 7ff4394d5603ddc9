package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRegistryBuildsRegisteredType(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register("fake", func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
		return &fakePublisher{id: cfg.ID}, nil
	})

	pub, err := reg.PublisherFor(context.Background(), PublisherConfig{ID: "p1", Type: "fake"}, nil)
	if err != nil {
		t.Fatalf("PublisherFor: %v", err)
	}
	if pub.ID() != "p1" {
		t.Errorf("id = %q", pub.ID())
	}
}

func TestRegistryUnknownType(t *testing.T) {
	_, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{ID: "p1", Type: "carrier-pigeon"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no publisher registered") {
		t.Errorf("err = %v", err)
	}
}

func TestBuildAll(t *testing.T) {
	reg := NewRegistry(map[string]Builder{
		"fake": func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
			return &fakePublisher{id: cfg.ID}, nil
		},
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "a", Type: "fake"},
		{ID: "b", Type: "fake"},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Errorf("built %d publishers", len(pubs))
	}
}

func TestBuildAllPropagatesError(t *testing.T) {
	reg := NewRegistry(map[string]Builder{
		"fake": func(_ context.Context, _ PublisherConfig, _ Logger) (Publisher, error) {
			return nil, errors.New("bad config")
		},
	})

	if _, err := BuildAll(context.Background(), reg, []PublisherConfig{{ID: "a", Type: "fake"}}, nil); err == nil {
		t.Fatal("expected error")
	}
}
