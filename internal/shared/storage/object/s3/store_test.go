package s3

import (
	"context"
	"testing"
)

func TestNewRejectsUnresolvableRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	if _, err := New(context.Background(), "", "bucket", "documents/"); err == nil {
		t.Fatal("expected error when no region can be resolved")
	}
}

func TestObjectURLIncludesRegionAndPrefix(t *testing.T) {
	store := &Store{bucket: "docs", region: "eu-west-1", prefix: "documents"}

	got := store.ObjectURL("abc.docx")
	want := "https://docs.s3.eu-west-1.amazonaws.com/documents/abc.docx"
	if got != want {
		t.Fatalf("ObjectURL = %q, want %q", got, want)
	}
}

func TestApplyPrefix(t *testing.T) {
	cases := []struct {
		prefix, key, want string
	}{
		{"documents", "a.docx", "documents/a.docx"},
		{"", "a.docx", "a.docx"},
		{"documents/", "/a.docx", "documents/a.docx"},
		{"documents", "", "documents"},
	}
	for _, tc := range cases {
		if got := applyPrefix(tc.prefix, tc.key); got != tc.want {
			t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.want)
		}
	}
}

func TestContentDispositionStripsUnsafeRunes(t *testing.T) {
	got := contentDisposition("quar\"terly\n.docx")
	want := `attachment; filename="quarterly.docx"`
	if got != want {
		t.Fatalf("contentDisposition = %q, want %q", got, want)
	}
}
