package db

import "testing"

func TestEncodeVector_Layout(t *testing.T) {
	if got := string(EncodeVector([]float32{1.0})); got != "\x00\x00\x80\x3f" {
		t.Errorf("EncodeVector(1.0) = %q", got)
	}
	if got := EncodeVector(nil); len(got) != 0 {
		t.Errorf("EncodeVector(nil) = %v, want empty", got)
	}
}

func TestDecodeVector(t *testing.T) {
	in := []float32{1.5, -2.25, 0}
	out, err := DecodeVector(EncodeVector(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("mismatch at %d: %v vs %v", i, in, out)
		}
	}

	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}
