package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLocalStorage_QuizArtifactRoundTrip(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	payload := []byte(`{"questions": [{"type": "yes_no"}]}`)
	if err := storage.SaveQuizArtifact("file-1", payload); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := storage.ReadQuizArtifact("file-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("stored bytes differ from saved bytes")
	}
}

func TestLocalStorage_MissingArtifactIsNotFound(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	_, err = storage.ReadQuizArtifact("nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	_, err = storage.ReadFlashcardArtifact("nope", "English")
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLocalStorage_FlashcardArtifactsKeyedByLanguage(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := storage.SaveFlashcardArtifact("f", "English", []byte(`["en"]`)); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveFlashcardArtifact("f", "Spanish", []byte(`["es"]`)); err != nil {
		t.Fatal(err)
	}

	en, err := storage.ReadFlashcardArtifact("f", "English")
	if err != nil {
		t.Fatal(err)
	}
	es, err := storage.ReadFlashcardArtifact("f", "spanish")
	if err != nil {
		t.Fatalf("language lookup should be case-insensitive: %v", err)
	}
	if string(en) != `["en"]` || string(es) != `["es"]` {
		t.Errorf("artifacts crossed languages: %s / %s", en, es)
	}
}

func TestLocalStorage_RemoveFileArtifacts(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if _, err := storage.SaveUpload("f", ".txt", strings.NewReader("doc")); err != nil {
		t.Fatal(err)
	}
	storage.WriteMarkdown("f", "doc")
	storage.SaveQuizArtifact("f", []byte("{}"))
	storage.SaveFlashcardArtifact("f", "English", []byte("[]"))
	storage.SaveFlashcardArtifact("f", "French", []byte("[]"))

	if err := storage.RemoveFileArtifacts("f", ".txt"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, err := storage.ReadMarkdown("f"); err == nil {
		t.Error("markdown should be gone")
	}
	if _, err := storage.ReadQuizArtifact("f"); err == nil {
		t.Error("quiz artifact should be gone")
	}
	if _, err := storage.ReadFlashcardArtifact("f", "French"); err == nil {
		t.Error("flashcard artifacts should be gone")
	}

	// Removing again is a no-op.
	if err := storage.RemoveFileArtifacts("f", ".txt"); err != nil {
		t.Errorf("second remove should not fail: %v", err)
	}
}

func TestLocalStorage_UploadRoundTrip(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if _, err := storage.SaveUpload("f", ".TXT", strings.NewReader("contents")); err != nil {
		t.Fatal(err)
	}

	f, err := storage.OpenUpload("f", ".txt")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(f); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "contents" {
		t.Errorf("unexpected upload contents: %q", buf.String())
	}
}
