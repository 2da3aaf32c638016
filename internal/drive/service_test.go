package drive

import (
	"context"
	"testing"

	"google.golang.org/api/drive/v3"
)

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"reports", "reports"},
		{"O'Brien", `O\'Brien`},
		{`a\b`, `a\\b`},
	}
	for _, tt := range tests {
		if got := escapeQuery(tt.in); got != tt.want {
			t.Errorf("escapeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromDrive(t *testing.T) {
	f := fromDrive(&drive.File{Id: "abc", Name: "summary.txt", MimeType: "text/plain", Size: 42, WebViewLink: "https://drive/abc"})
	if f.ID != "abc" || f.Size != 42 || f.WebViewLink != "https://drive/abc" {
		t.Errorf("fromDrive() = %+v", f)
	}
}

func TestNewServiceRejectsBadCredentials(t *testing.T) {
	if _, err := NewService(context.Background(), "{not json"); err == nil {
		t.Error("expected error for malformed credentials")
	}
}
