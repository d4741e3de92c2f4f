package document

import "testing"

func TestNewRecord_Valid(t *testing.T) {
	r, err := NewRecord("bitrefill_keywords/GB/steam-uk", "steam gift card £10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID() != "bitrefill_keywords/GB/steam-uk" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Path() != r.ID() {
		t.Errorf("Path() = %q, want ID", r.Path())
	}
	if r.Filename() != "steam-uk" {
		t.Errorf("Filename() = %q", r.Filename())
	}
	if r.TextLength() != 19 {
		t.Errorf("TextLength() = %d, want 19 characters", r.TextLength())
	}
}

func TestNewRecord_EmptyPath(t *testing.T) {
	if _, err := NewRecord("", "text"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNewRecord_BlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := NewRecord("a/b", text); err == nil {
			t.Errorf("expected error for text %q", text)
		}
	}
}

func TestReconstruct(t *testing.T) {
	r := Reconstruct("id", "file", "dir/file", "body", 4)
	if r.ID() != "id" || r.Filename() != "file" || r.Path() != "dir/file" || r.Text() != "body" || r.TextLength() != 4 {
		t.Errorf("unexpected record: %+v", r)
	}
}
