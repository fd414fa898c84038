package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"strings"
)

// JPEGBytes encodes a solid-colour JPEG. Different seeds give different content.
func JPEGBytes(width, height int, seed uint8) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(width, height, seed), &jpeg.Options{Quality: 90}); err != nil {
		panic(fmt.Sprintf("encode jpeg fixture: %v", err))
	}
	return buf.Bytes()
}

// PNGBytes encodes a solid-colour PNG
func PNGBytes(width, height int, seed uint8) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(width, height, seed)); err != nil {
		panic(fmt.Sprintf("encode png fixture: %v", err))
	}
	return buf.Bytes()
}

func solid(width, height int, seed uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := color.RGBA{R: seed, G: 255 - seed, B: seed / 2, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// MultipartFile builds a multipart body with a single file part
func MultipartFile(field, filename, contentType string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename),
	}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// DecodeJSON unmarshals a recorded JSON response into target
func DecodeJSON(t TestingInterface, resp *httptest.ResponseRecorder, target any) {
	t.Helper()
	if !strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON response, got %q: %s", resp.Header().Get("Content-Type"), resp.Body.String())
		return
	}
	if err := json.Unmarshal(resp.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to unmarshal JSON response: %v", err)
	}
}

// TestingInterface is the subset of testing.T the helpers need
type TestingInterface interface {
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Helper()
}
