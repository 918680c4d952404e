package store

import (
	"context"
	"testing"
	"time"

	"github.com/rfkit/rfkit/pkg/errors"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	fig := NewFigure("stack", "34 traces  XX.ABC..BHZ", []byte("<svg/>"))
	fig.Stations = []string{"XX.ABC."}
	fig.TraceCount = 34
	if fig.ID == "" {
		t.Fatal("NewFigure should generate an id")
	}

	if err := s.Put(ctx, fig); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, fig.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != fig.Title || string(got.SVG) != "<svg/>" || got.TraceCount != 34 {
		t.Errorf("roundtrip lost fields: %+v", got)
	}

	// Mutating the returned copy must not touch the stored document.
	got.Title = "changed"
	again, _ := s.Get(ctx, fig.ID)
	if again.Title != fig.Title {
		t.Error("Get should return a copy")
	}

	if err := s.Delete(ctx, fig.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, fig.ID); !errors.Is(err, errors.ErrCodeFigureNotFound) {
		t.Errorf("error code = %q, want FIGURE_NOT_FOUND", errors.GetCode(err))
	}
	if err := s.Delete(ctx, fig.ID); err != nil {
		t.Errorf("deleting a missing figure: %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	old := NewFigure("stack", "old", []byte("<svg/>"))
	old.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := NewFigure("profile", "recent", []byte("<svg/>"))
	recent.CreatedAt = time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, fig := range []*Figure{old, recent} {
		if err := s.Put(ctx, fig); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	figs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(figs) != 2 {
		t.Fatalf("got %d figures, want 2", len(figs))
	}
	if figs[0].Title != "recent" || figs[1].Title != "old" {
		t.Errorf("list order = %q, %q, want newest first", figs[0].Title, figs[1].Title)
	}
	for _, fig := range figs {
		if fig.SVG != nil {
			t.Error("List should omit SVG payloads")
		}
	}
}

func TestMemoryStorePutWithoutID(t *testing.T) {
	if err := NewMemoryStore().Put(context.Background(), &Figure{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}
