package cache

import (
	"strings"
	"testing"

	"edugate/internal/core"
)

func TestRollingHasher(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "hello", want: "1n1e4y"},
		{input: "", want: "0"},
		{input: "a", want: "2p"},
		{input: "photosynthesis", want: "nnvc66"},
		{input: "what is gravity?", want: "ohe6q3"},
	}

	h := RollingHasher{}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := h.Sum(tt.input); got != tt.want {
				t.Errorf("Sum(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRollingHasher_Deterministic(t *testing.T) {
	h := RollingHasher{}
	first := h.Sum("hello")
	for i := 0; i < 100; i++ {
		if got := h.Sum("hello"); got != first {
			t.Fatalf("Sum(hello) changed between runs: %q vs %q", first, got)
		}
	}
}

func TestXXHasher(t *testing.T) {
	h := XXHasher{}
	if h.Sum("hello") != h.Sum("hello") {
		t.Error("xxhash digest should be deterministic")
	}
	if h.Sum("hello") == h.Sum("hellp") {
		t.Error("different inputs should produce different digests")
	}
	if h.Sum("hello") == (RollingHasher{}).Sum("hello") {
		t.Error("xxhash and rolling digests should differ")
	}
}

func TestNewHasher(t *testing.T) {
	for _, name := range []string{"", HashRolling} {
		h, err := NewHasher(name)
		if err != nil {
			t.Fatalf("NewHasher(%q) error: %v", name, err)
		}
		if h.Name() != HashRolling {
			t.Errorf("NewHasher(%q).Name() = %q, want rolling", name, h.Name())
		}
	}

	h, err := NewHasher(HashXXHash)
	if err != nil || h.Name() != HashXXHash {
		t.Errorf("NewHasher(xxhash) = %v, %v", h, err)
	}

	if _, err := NewHasher("md5"); err == nil {
		t.Error("NewHasher(md5) should fail")
	}
}

func TestKeyer_Structured(t *testing.T) {
	k := NewKeyer(nil)

	key := k.Structured(core.ResourceLesson, "Photosynthesis", 5, "EN")
	if key != "lesson:photosynthesis:5:en" {
		t.Errorf("Structured() = %q, want %q", key, "lesson:photosynthesis:5:en")
	}

	variants := []string{"photosynthesis", "  PHOTOSYNTHESIS ", "\tPhotoSynthesis\n"}
	for _, v := range variants {
		if got := k.Structured(core.ResourceLesson, v, 5, " en "); got != key {
			t.Errorf("Structured(%q) = %q, want %q", v, got, key)
		}
	}

	if k.Structured(core.ResourceLesson, "photosynthesis", 6, "en") == key {
		t.Error("different grade should produce a different key")
	}
	if k.Structured(core.ResourceDiagram, "photosynthesis", 5, "en") == key {
		t.Error("different resource should produce a different key")
	}
}

func TestKeyer_Text(t *testing.T) {
	k := NewKeyer(RollingHasher{})

	key := k.Text(core.ResourceAudio, "Hello", "en-IN-Wavenet-D", "en-IN")
	want := "audio:1n1e4y:en-in-wavenet-d:en-in"
	if key != want {
		t.Errorf("Text() = %q, want %q", key, want)
	}

	if got := k.Text(core.ResourceAudio, "  hello  ", "en-IN-Wavenet-D", "en-IN"); got != key {
		t.Errorf("whitespace/case variants should share a key: %q vs %q", got, key)
	}

	long := strings.Repeat("a very long narration ", 500)
	if got := k.Text(core.ResourceAudio, long); len(got) > 32 {
		t.Errorf("free-text key length = %d, want bounded", len(got))
	}
}

func TestKeyer_Pure(t *testing.T) {
	k := NewKeyer(XXHasher{})
	a := k.Text(core.ResourceDoubt, "why is the sky blue?", "7", "en")
	b := k.Text(core.ResourceDoubt, "why is the sky blue?", "7", "en")
	if a != b {
		t.Errorf("Text() not deterministic: %q vs %q", a, b)
	}
}
