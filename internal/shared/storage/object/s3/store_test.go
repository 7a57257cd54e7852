package s3

import (
	"strings"
	"testing"
	"time"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "uploads/2026/01/02/file.pdf", want: "uploads/2026/01/02/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "uploads/file.pdf", want: "root/sub/uploads/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestUploadKey(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 9, 15, 4, 5, 0, time.UTC)
	key := uploadKey(ts, "invoice.pdf")

	if !strings.HasPrefix(key, "uploads/2026/03/09/") {
		t.Fatalf("uploadKey = %q, want uploads/2026/03/09/ prefix", key)
	}
	if !strings.HasSuffix(key, "-invoice.pdf") {
		t.Fatalf("uploadKey = %q, want -invoice.pdf suffix", key)
	}
	if other := uploadKey(ts, "invoice.pdf"); other == key {
		t.Fatalf("uploadKey not unique: %q", key)
	}
}

func TestURLVirtualHostedStyle(t *testing.T) {
	t.Parallel()

	s := &Store{bucket: "docs-bucket", prefix: "prod", region: "eu-west-1"}
	got := s.URL("uploads/2026/03/09/abc-invoice.pdf")
	want := "https://docs-bucket.s3.eu-west-1.amazonaws.com/prod/uploads/2026/03/09/abc-invoice.pdf"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}

	s = &Store{bucket: "docs-bucket"}
	got = s.URL("uploads/a.pdf")
	want = "https://docs-bucket.s3.amazonaws.com/uploads/a.pdf"
	if got != want {
		t.Fatalf("URL = %q, want %q", got, want)
	}
}
