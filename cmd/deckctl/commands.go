package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/inamate/slides/internal/asset"
	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/export"
	"github.com/inamate/slides/internal/persist"
	"github.com/inamate/slides/internal/presets"
	"github.com/inamate/slides/internal/store"
	"github.com/inamate/slides/internal/typeid"
)

var errUsage = errors.New("missing argument")

func arg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("%w: %s", errUsage, name)
	}
	return v, nil
}

func validateCmd(ctx context.Context, cmd *cli.Command) error {
	path, err := arg(cmd, 0, "snapshot")
	if err != nil {
		return err
	}
	if _, err := persist.NewFileStore(path).Load(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", path)
	return nil
}

func infoCmd(ctx context.Context, cmd *cli.Command) error {
	path, err := arg(cmd, 0, "snapshot")
	if err != nil {
		return err
	}
	doc, err := persist.NewFileStore(path).Load()
	if err != nil {
		return err
	}
	writeInfo(os.Stdout, doc)
	return nil
}

func sampleCmd(ctx context.Context, cmd *cli.Command) error {
	path, err := arg(cmd, 0, "out")
	if err != nil {
		return err
	}
	doc := presets.Default().SampleDeck(typeid.NewDeckID())
	return persist.NewFileStore(path).Save(ctx, doc)
}

func applyCmd(ctx context.Context, cmd *cli.Command) error {
	path, err := arg(cmd, 0, "snapshot")
	if err != nil {
		return err
	}
	opsPath, err := arg(cmd, 1, "ops")
	if err != nil {
		return err
	}

	fs := persist.NewFileStore(path)
	doc, err := fs.Load()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opsPath)
	if err != nil {
		return fmt.Errorf("read operations: %w", err)
	}

	doc, applied, err := applyOps(doc, data)
	if err != nil {
		return err
	}
	if err := fs.Save(ctx, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "applied %d operations to %s\n", applied, path)
	return nil
}

func exportCmd(ctx context.Context, cmd *cli.Command) error {
	path, err := arg(cmd, 0, "snapshot")
	if err != nil {
		return err
	}
	slides, err := parseSlides(cmd.String("slides"))
	if err != nil {
		return err
	}
	job := exportJob{
		snapshot: path,
		out:      cmd.String("out"),
		images:   asset.NewHandler(cmd.String("assets"), nil),
		slides:   slides,
	}

	if err := job.run(); err != nil {
		return err
	}
	if !cmd.Bool("watch") {
		return nil
	}
	return watch(ctx, path, slog.Default(), func() {
		if err := job.run(); err != nil {
			slog.Warn("re-export failed", slog.String("error", err.Error()))
		}
	})
}

type exportJob struct {
	snapshot string
	out      string
	images   export.ImageResolver
	slides   []int
}

func (j exportJob) run() error {
	doc, err := persist.NewFileStore(j.snapshot).Load()
	if err != nil {
		return err
	}

	out := j.out
	if out == "" {
		out = export.Filename(doc.Title)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := export.PDF(doc, f, export.Options{Images: j.images, Slides: j.slides}); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", out)
	return nil
}

// applyOps replays a JSON array of operations against doc and returns how
// many were applied.
func applyOps(doc document.Document, data []byte) (document.Document, int, error) {
	var ops []store.Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return doc, 0, fmt.Errorf("decode operations: %w", err)
	}
	s := store.New(doc)
	for i, op := range ops {
		if _, err := s.Apply(op); err != nil {
			return doc, i, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return s.Document(), len(ops), nil
}

// parseSlides turns "1,3" into zero-based indexes.
func parseSlides(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid slide number %q", part)
		}
		out = append(out, n-1)
	}
	return out, nil
}

func writeInfo(w io.Writer, doc document.Document) {
	fmt.Fprintf(w, "%s (%s)\n", doc.Title, doc.ID)
	for i, s := range doc.Slides {
		counts := map[document.ElementKind]int{}
		for _, el := range s.Elements {
			counts[el.Kind()]++
		}
		marker := " "
		if i == doc.CurrentSlideIndex {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %2d  %-32s bg=%s elements=%d text=%d shape=%d image=%d chart=%d\n",
			marker, i+1, s.ID, s.Background, len(s.Elements),
			counts[document.KindText], counts[document.KindShape], counts[document.KindImage], counts[document.KindChart])
	}
}
