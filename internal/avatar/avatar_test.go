package avatar

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderDeterministic(t *testing.T) {
	a, err := Render("alice@example.com")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := Render("alice@example.com")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected identical output for identical seeds")
	}

	c, _ := Render("bob@example.com")
	if bytes.Equal(a, c) {
		t.Error("expected different output for different seeds")
	}
}

func TestRenderValidPNG(t *testing.T) {
	data, err := Render("seed")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding rendered avatar: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != Size || bounds.Dy() != Size {
		t.Errorf("expected %dx%d image, got %dx%d", Size, Size, bounds.Dx(), bounds.Dy())
	}
}

func TestURLAndIsPlaceholder(t *testing.T) {
	u := URL("Alice Smith")
	if !IsPlaceholder(u) {
		t.Errorf("expected %q to be recognized as a placeholder", u)
	}
	if IsPlaceholder("https://cdn.example.com/alice.png") {
		t.Error("provider avatar misidentified as placeholder")
	}
	if u != "/avatars/Alice%20Smith.png" {
		t.Errorf("URL = %q", u)
	}
}
