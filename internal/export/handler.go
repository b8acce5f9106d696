package export

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inamate/slides/internal/document"
)

const maxDocumentSize = 5 << 20 // 5MB

type Handler struct {
	images ImageResolver
	logger *slog.Logger
}

func NewHandler(images ImageResolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{images: images, logger: logger}
}

// ExportPDF handles POST /export/pdf with a document snapshot as the body.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	doc, err := document.Decode(data)
	if err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Write(w, doc)
}

// Write renders doc and sends it as a PDF attachment.
func (h *Handler) Write(w http.ResponseWriter, doc document.Document) {
	var buf bytes.Buffer
	if err := PDF(doc, &buf, Options{Images: h.images}); err != nil {
		h.logger.Error("export pdf", "deck", doc.ID, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(doc.Title)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Filename turns a deck title into a safe PDF file name.
func Filename(title string) string {
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "-")
	if name == "" {
		name = "presentation"
	}
	return name + ".pdf"
}
