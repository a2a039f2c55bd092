package util

import "testing"

func TestFileExtensionLastDotWins(t *testing.T) {
	ext, ok := FileExtension("report.final.docx")
	if !ok || ext != "docx" {
		t.Fatalf("expected docx, got %q ok=%v", ext, ok)
	}
}

func TestFileExtensionMissing(t *testing.T) {
	if _, ok := FileExtension("README"); ok {
		t.Fatal("expected no extension for README")
	}
	if _, ok := FileExtension("trailing."); ok {
		t.Fatal("expected no extension for trailing dot")
	}
}

func TestSanitizeFileNameRejectsTraversal(t *testing.T) {
	if _, err := SanitizeFileName("../../etc/passwd"); err == nil {
		t.Fatal("expected error for traversal name")
	}
	got, err := SanitizeFileName("a/b.docx")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "a_b.docx" {
		t.Fatalf("expected a_b.docx, got %s", got)
	}
}
