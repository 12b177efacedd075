package memory

import (
	"context"
	"io"
	"testing"

	"previaje/internal/core"
)

func TestStoreReturnsCopies(t *testing.T) {
	travel := []core.Travel{{Month: "2021-01-01", Origin: "A", Destination: "B", Travelers: 1}}
	s := New([]core.Population{{Province: "B", People: 10}}, travel, nil, []byte(`{}`))

	travel[0].Travelers = 99 // caller mutation after New
	got, err := s.Travel(context.Background())
	if err != nil {
		t.Fatalf("travel: %v", err)
	}
	if got[0].Travelers != 1 {
		t.Fatalf("store aliased caller slice: %v", got[0].Travelers)
	}

	got[0].Travelers = 42 // reader mutation
	again, _ := s.Travel(context.Background())
	if again[0].Travelers != 1 {
		t.Fatalf("store returned shared slice: %v", again[0].Travelers)
	}
}

func TestStoreGeometry(t *testing.T) {
	s := New(nil, nil, nil, []byte(`{"type":"FeatureCollection","features":[]}`))
	rc, err := s.Geometry(context.Background())
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if len(b) == 0 {
		t.Fatalf("empty geometry")
	}

	if _, err := New(nil, nil, nil, nil).Geometry(context.Background()); err == nil {
		t.Fatalf("expected error without geometry")
	}
}
