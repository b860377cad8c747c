package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps uploaded documents and generated artifacts on disk.
// Uploads live under <root>/uploads, generated markdown and JSON artifacts
// under <root>/output. Artifact names are derived from the file ID so a
// download handler can serve the persisted bytes verbatim.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	for _, dir := range []string{root, filepath.Join(root, "uploads"), filepath.Join(root, "output")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
		}
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) uploadPath(fileID, ext string) string {
	return filepath.Join(s.root, "uploads", fileID+strings.ToLower(ext))
}

func (s *LocalStorage) markdownPath(fileID string) string {
	return filepath.Join(s.root, "output", fileID+".md")
}

func (s *LocalStorage) quizPath(fileID string) string {
	return filepath.Join(s.root, "output", "quiz_"+fileID+".json")
}

func (s *LocalStorage) flashcardsPath(fileID, language string) string {
	return filepath.Join(s.root, "output", "flashcards_"+fileID+"_"+strings.ToLower(language)+".json")
}

// SaveUpload streams an uploaded document to disk and returns its path.
func (s *LocalStorage) SaveUpload(fileID, ext string, r io.Reader) (string, error) {
	path := s.uploadPath(fileID, ext)
	f, err := os.Create(path)
	if err != nil {
		return "", &StorageError{Message: "failed to create upload file", Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", &StorageError{Message: "failed to write upload file", Err: err}
	}
	return path, nil
}

// RemoveFileArtifacts deletes the upload and every artifact generated from
// it. Missing artifacts are not errors.
func (s *LocalStorage) RemoveFileArtifacts(fileID, ext string) error {
	var firstErr error
	remove := func(path string) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}

	remove(s.uploadPath(fileID, ext))
	remove(s.markdownPath(fileID))
	remove(s.quizPath(fileID))

	// Flashcard artifacts carry the language in the name, so glob for them.
	matches, _ := filepath.Glob(filepath.Join(s.root, "output", "flashcards_"+fileID+"_*.json"))
	for _, m := range matches {
		remove(m)
	}

	if firstErr != nil {
		return &StorageError{Message: "failed to remove file artifacts", Err: firstErr}
	}
	return nil
}

func (s *LocalStorage) WriteMarkdown(fileID, content string) error {
	if err := os.WriteFile(s.markdownPath(fileID), []byte(content), 0o644); err != nil {
		return &StorageError{Message: "failed to write markdown", Err: err}
	}
	return nil
}

func (s *LocalStorage) ReadMarkdown(fileID string) (string, error) {
	data, err := os.ReadFile(s.markdownPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", &NotFoundError{Message: "markdown not found for file"}
		}
		return "", &StorageError{Message: "failed to read markdown", Err: err}
	}
	return string(data), nil
}

// SaveQuizArtifact persists the validated quiz JSON for later download.
func (s *LocalStorage) SaveQuizArtifact(fileID string, data []byte) error {
	if err := os.WriteFile(s.quizPath(fileID), data, 0o644); err != nil {
		return &StorageError{Message: "failed to write quiz artifact", Err: err}
	}
	return nil
}

// ReadQuizArtifact returns the persisted quiz bytes unchanged.
func (s *LocalStorage) ReadQuizArtifact(fileID string) ([]byte, error) {
	data, err := os.ReadFile(s.quizPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Message: "no quiz has been generated for this file"}
		}
		return nil, &StorageError{Message: "failed to read quiz artifact", Err: err}
	}
	return data, nil
}

func (s *LocalStorage) SaveFlashcardArtifact(fileID, language string, data []byte) error {
	if err := os.WriteFile(s.flashcardsPath(fileID, language), data, 0o644); err != nil {
		return &StorageError{Message: "failed to write flashcard artifact", Err: err}
	}
	return nil
}

func (s *LocalStorage) ReadFlashcardArtifact(fileID, language string) ([]byte, error) {
	data, err := os.ReadFile(s.flashcardsPath(fileID, language))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Message: "no flashcards have been generated for this file and language"}
		}
		return nil, &StorageError{Message: "failed to read flashcard artifact", Err: err}
	}
	return data, nil
}

// OpenUpload opens the stored upload for reading.
func (s *LocalStorage) OpenUpload(fileID, ext string) (*os.File, error) {
	f, err := os.Open(s.uploadPath(fileID, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Message: "uploaded file not found on disk"}
		}
		return nil, &StorageError{Message: "failed to open upload", Err: err}
	}
	return f, nil
}

// UploadPath exposes the on-disk location of a stored upload for extractors
// that need a path rather than a reader.
func (s *LocalStorage) UploadPath(fileID, ext string) string {
	return s.uploadPath(fileID, ext)
}
