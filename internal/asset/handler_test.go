package asset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gorilla/mux"

	"github.com/inamate/slides/internal/geometry"
)

func uploadRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="chart-photo.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(body)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestUploadResolveDelete(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)

	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", pngBytes(t, 600, 300)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Width != 600 || resp.Height != 300 || resp.Alt != "chart-photo" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Size != (geometry.Size{Width: 300, Height: 150}) {
		t.Errorf("suggested size = %+v", resp.Size)
	}

	if _, ok := h.Resolve(resp.Src); !ok {
		t.Errorf("Resolve(%q) failed", resp.Src)
	}
	if _, ok := h.Resolve("https://example.com/cat.png"); ok {
		t.Error("external src resolved")
	}
	if _, ok := h.Resolve("/assets/../secret"); ok {
		t.Error("path traversal resolved")
	}

	r := mux.NewRouter()
	r.HandleFunc("/assets/{assetId}", h.Remove).Methods(http.MethodDelete)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assets/"+resp.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assets/"+resp.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status %d", rec.Code)
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	h := NewHandler(t.TempDir(), nil)
	rec := httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "text/plain", []byte("hello")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Upload(rec, uploadRequest(t, "image/png", []byte("not a png")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("corrupt image status %d", rec.Code)
	}
}

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h float64
		want geometry.Size
	}{
		{600, 300, geometry.Size{Width: 300, Height: 150}},
		{100, 400, geometry.Size{Width: 50, Height: 200}},
		{120, 80, geometry.Size{Width: 120, Height: 80}},
		{0, 10, MaxElementSize},
	}
	for _, tc := range cases {
		if got := FitSize(tc.w, tc.h, MaxElementSize); got != tc.want {
			t.Errorf("FitSize(%v, %v) = %+v, want %+v", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4000, 1000))
	got := Downscale(img, MaxStoredDimension).Bounds()
	if got.Dx() != 2048 || got.Dy() != 512 {
		t.Errorf("downscaled to %dx%d, want 2048x512", got.Dx(), got.Dy())
	}

	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	if Downscale(small, MaxStoredDimension) != image.Image(small) {
		t.Error("small image was copied")
	}
}
