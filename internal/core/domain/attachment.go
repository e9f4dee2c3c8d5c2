package domain

import (
	"path/filepath"
	"strings"
)

// SelectedFile is a proof chosen by the employee on the creation form.
type SelectedFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// Extension returns the lower-cased extension of the file without its dot.
// When the name has none, it is derived from the MIME subtype.
func (f SelectedFile) Extension() string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
	if ext != "" {
		return ext
	}
	ct := strings.ToLower(f.ContentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if i := strings.LastIndex(ct, "/"); i >= 0 {
		return strings.TrimSpace(ct[i+1:])
	}
	return ""
}

// UploadedFile is the store's reference to a stored proof.
type UploadedFile struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	ID       string `json:"key"`
}

// StoredFile is a proof read back from a store that keeps file contents.
type StoredFile struct {
	ID          string
	FileName    string
	ContentType string
	Content     []byte
}

// PreviewKind tells the view how to embed a proof.
type PreviewKind string

const (
	PreviewImage PreviewKind = "image"
	PreviewPDF   PreviewKind = "pdf"
	PreviewLink  PreviewKind = "link"
)

// FilePreview is the modal state opened from the bills list.
type FilePreview struct {
	URL  string      `json:"url"`
	Kind PreviewKind `json:"kind"`
}
