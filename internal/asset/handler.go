package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/typeid"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	urlPrefix     = "/assets/"

	// MaxStoredDimension caps the longest side of a stored asset.
	MaxStoredDimension = 2048
)

var acceptedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var ErrNotFound = errors.New("asset not found")

// MaxElementSize bounds the suggested size of an image element created from
// an upload.
var MaxElementSize = geometry.Size{Width: 300, Height: 200}

// UploadResponse is returned from the upload endpoint. Src and Alt are ready
// to use as an image element's fields.
type UploadResponse struct {
	ID     string        `json:"id"`
	Src    string        `json:"src"`
	Alt    string        `json:"alt"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Size   geometry.Size `json:"size"`
}

// Handler serves asset upload and retrieval endpoints.
type Handler struct {
	dir    string // directory to store asset files
	logger *slog.Logger
}

// NewHandler creates a new asset handler that stores files in dir.
func NewHandler(dir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("create asset dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, logger: logger}
}

// Upload handles POST /assets/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !accepted(header.Header.Get("Content-Type")) {
		http.Error(w, "only PNG, JPEG, GIF and WebP images are supported", http.StatusBadRequest)
		return
	}

	// Decode to validate and to normalise everything to PNG.
	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}
	img = Downscale(img, MaxStoredDimension)

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	assetID := typeid.NewAssetID()
	filename := assetID + ".png"
	filePath := filepath.Join(h.dir, filename)

	if err := writePNG(filePath, img); err != nil {
		h.logger.Error("store asset", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	alt := r.FormValue("alt")
	if alt == "" {
		alt = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	resp := UploadResponse{
		ID:     assetID,
		Src:    urlPrefix + filename,
		Alt:    alt,
		Width:  width,
		Height: height,
		Size:   FitSize(float64(width), float64(height), MaxElementSize),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func accepted(contentType string) bool {
	for _, t := range acceptedTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// Downscale shrinks img so its longest side is at most limit, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if limit <= 0 || longest <= limit {
		return img
	}
	w := max(1, b.Dx()*limit/longest)
	h := max(1, b.Dy()*limit/longest)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	return out.Close()
}

// Serve returns an http.Handler that serves stored asset files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix(urlPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Asset IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Remove handles DELETE /assets/{assetId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.Delete(mux.Vars(r)["assetId"])
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "asset not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error("delete asset", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// Delete removes an asset file from disk.
func (h *Handler) Delete(assetID string) error {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(h.dir, assetID+".png"))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// Resolve maps an image element's src to the stored file, if it refers to
// an uploaded asset.
func (h *Handler) Resolve(src string) (string, bool) {
	name, ok := strings.CutPrefix(src, urlPrefix)
	if !ok || name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	path := filepath.Join(h.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// FitSize scales w×h down to fit within bound, keeping the aspect ratio.
// Sizes already inside bound are returned unchanged.
func FitSize(w, h float64, bound geometry.Size) geometry.Size {
	if w <= 0 || h <= 0 {
		return bound
	}
	scale := min(bound.Width/w, bound.Height/h, 1)
	return geometry.Size{Width: w * scale, Height: h * scale}
}
