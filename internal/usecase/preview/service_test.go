package preview

import (
	"io/fs"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain/document"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

type fileStub struct {
	files map[string]string
	paths []string
}

func (f *fileStub) read(name string) ([]byte, error) {
	f.paths = append(f.paths, name)
	body, ok := f.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(body), nil
}

func docHit(p, text string) hit.Hit {
	rec, err := document.NewRecord(p, text)
	if err != nil {
		panic(err)
	}
	return hit.Lexical("GB", rec, 1.5)
}

func TestFormat_URLAndScores(t *testing.T) {
	svc := New(DefaultConfig(), (&fileStub{}).read, zap.NewNop())

	got := svc.Format([]hit.Hit{docHit("./bitrefill_keywords/GB/steam", "steam gift card")})
	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}
	r := got[0]
	if r.Collection != "GB" || r.Filename != "steam" {
		t.Errorf("unexpected identity: %+v", r)
	}
	if r.URL != "https://www.bitrefill.com/GB/en/gift-cards/steam" {
		t.Errorf("unexpected url %q", r.URL)
	}
	if r.TextMatchScore != 1.5 || r.VectorMatchScore != hit.SentinelVectorScore {
		t.Errorf("unexpected scores: %v %v", r.TextMatchScore, r.VectorMatchScore)
	}
}

func TestFormat_SnippetLength(t *testing.T) {
	long := strings.Repeat("é", 700)
	svc := New(DefaultConfig(), (&fileStub{}).read, zap.NewNop())

	r := svc.Format([]hit.Hit{docHit("/data/bitrefill_keywords/BE/netflix", long)})[0]
	if n := len([]rune(r.Snippet)); n != 600 {
		t.Errorf("expected 600 characters, got %d", n)
	}
}

func TestFormat_OriginalSnippet(t *testing.T) {
	files := &fileStub{files: map[string]string{"/data/bitrefill_parsed/MX/amazon": "original page text"}}
	svc := New(DefaultConfig(), files.read, zap.NewNop())

	r := svc.Format([]hit.Hit{docHit("/data/bitrefill_keywords/MX/amazon", "keywords")})[0]
	if r.OriginalSnippet != "original page text" {
		t.Errorf("unexpected original snippet %q", r.OriginalSnippet)
	}
	if len(files.paths) != 1 || files.paths[0] != "/data/bitrefill_parsed/MX/amazon" {
		t.Errorf("unexpected original path %v", files.paths)
	}
}

func TestFormat_OriginalSnippetIsRaw(t *testing.T) {
	body := "Tom &amp; Jerry\n<b>card</b>\n" + strings.Repeat("x", 700)
	files := &fileStub{files: map[string]string{"/data/bitrefill_parsed/GB/toys": body}}
	svc := New(DefaultConfig(), files.read, zap.NewNop())

	r := svc.Format([]hit.Hit{docHit("/data/bitrefill_keywords/GB/toys", "toys")})[0]
	if !strings.HasPrefix(r.OriginalSnippet, "Tom &amp; Jerry\n<b>card</b>\n") {
		t.Errorf("original snippet should be untouched, got %q", r.OriginalSnippet[:30])
	}
	if n := len([]rune(r.OriginalSnippet)); n != 600 {
		t.Errorf("expected 600 characters, got %d", n)
	}
}

func TestFormat_OriginalEmptyFileIsKept(t *testing.T) {
	files := &fileStub{files: map[string]string{"/data/bitrefill_parsed/GB/steam": ""}}
	svc := New(DefaultConfig(), files.read, zap.NewNop())

	r := svc.Format([]hit.Hit{docHit("/data/bitrefill_keywords/GB/steam", "steam keywords")})[0]
	if r.OriginalSnippet != "" {
		t.Errorf("expected empty original snippet, got %q", r.OriginalSnippet)
	}
}

func TestFormat_OriginalFallback(t *testing.T) {
	tests := map[string]*fileStub{
		"missing file": {},
		"invalid utf-8": {files: map[string]string{"/data/bitrefill_parsed/GB/steam": "caf\xe9"}},
	}
	for name, files := range tests {
		t.Run(name, func(t *testing.T) {
			svc := New(DefaultConfig(), files.read, zap.NewNop())

			r := svc.Format([]hit.Hit{docHit("/data/bitrefill_keywords/GB/steam", "steam keywords")})[0]
			if r.OriginalSnippet != "steam keywords" {
				t.Errorf("expected fallback to snippet, got %q", r.OriginalSnippet)
			}
		})
	}
}

func TestFormat_NoOriginalToken(t *testing.T) {
	files := &fileStub{}
	svc := New(DefaultConfig(), files.read, zap.NewNop())

	r := svc.Format([]hit.Hit{docHit("/elsewhere/GB/steam", "steam")})[0]
	if r.OriginalSnippet != "steam" || len(files.paths) != 0 {
		t.Errorf("expected fallback without lookup, got %q (%v)", r.OriginalSnippet, files.paths)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 3, "hel"},
		{"hello", 10, "hello"},
		{"ñandú", 2, "ña"},
		{"abc", 0, ""},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestLastTwo(t *testing.T) {
	if dir, file := lastTwo("steam"); dir != "" || file != "steam" {
		t.Errorf("unexpected split %q %q", dir, file)
	}
	if dir, file := lastTwo("a/GB/steam"); dir != "GB" || file != "steam" {
		t.Errorf("unexpected split %q %q", dir, file)
	}
}
