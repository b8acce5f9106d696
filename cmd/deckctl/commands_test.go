package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/presets"
)

func TestParseSlides(t *testing.T) {
	got, err := parseSlides("1, 3")
	if err != nil {
		t.Fatalf("parseSlides: %v", err)
	}
	if want := []int{0, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, err := parseSlides(""); err != nil || got != nil {
		t.Errorf("empty: got %v, %v", got, err)
	}
	for _, bad := range []string{"0", "x", "2,,3"} {
		if _, err := parseSlides(bad); err == nil {
			t.Errorf("parseSlides(%q) succeeded", bad)
		}
	}
}

func TestApplyOps(t *testing.T) {
	doc := document.New("deck_1", "slide_1")
	ops := []byte(`[
		{"type":"document.title","title":"Offline edit"},
		{"type":"slide.add","slideId":"slide_2"},
		{"type":"slide.background","slideId":"slide_2","background":"#000000"}
	]`)

	out, n, err := applyOps(doc, ops)
	if err != nil {
		t.Fatalf("applyOps: %v", err)
	}
	if n != 3 {
		t.Errorf("applied %d, want 3", n)
	}
	if out.Title != "Offline edit" || len(out.Slides) != 2 || out.Slides[1].Background != "#000000" {
		t.Errorf("unexpected document: %+v", out)
	}

	_, n, err = applyOps(doc, []byte(`[{"type":"document.title","title":"ok"},{"type":"bogus"}]`))
	if err == nil || n != 1 {
		t.Errorf("bogus op: n=%d err=%v", n, err)
	}
}

func TestWriteInfo(t *testing.T) {
	doc := presets.Default().SampleDeck("deck_sample")
	var buf bytes.Buffer
	writeInfo(&buf, doc)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(doc.Slides)+1 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "*") {
		t.Errorf("current slide not marked: %q", lines[1])
	}
	if !strings.Contains(lines[2], "shape=3") {
		t.Errorf("second slide counts: %q", lines[2])
	}
}

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)), func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(2 * settleDelay)
	defer tick.Stop()
	for {
		select {
		case <-fired:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch: %v", err)
			}
			return
		case <-tick.C:
			os.WriteFile(path, []byte(`{"touched":true}`), 0o644)
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}
