package service

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// multipartFile builds a real multipart.File + header pair for testing.
func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("cv_file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parsing multipart form: %v", err)
	}

	file, header, err := req.FormFile("cv_file")
	if err != nil {
		t.Fatalf("getting form file: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })
	return file, header
}

func testService(t *testing.T) *ResumeService {
	t.Helper()
	svc, err := NewResumeService(t.TempDir())
	if err != nil {
		t.Fatalf("NewResumeService() error = %v", err)
	}
	return svc
}

func TestStorePDF(t *testing.T) {
	svc := testService(t)
	content := []byte("%PDF-1.4 fake resume content")
	file, header := multipartFile(t, "resume.pdf", content)

	stored, err := svc.Store(file, header)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if !strings.HasPrefix(stored, "cv_") {
		t.Errorf("stored name = %q, want cv_ prefix", stored)
	}
	if !strings.HasSuffix(stored, "_resume.pdf") {
		t.Errorf("stored name = %q, want _resume.pdf suffix", stored)
	}

	got, err := os.ReadFile(filepath.Join(svc.UploadDir(), stored))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("stored file content does not match upload")
	}
}

func TestStoreRejectsNonPDF(t *testing.T) {
	svc := testService(t)

	for _, name := range []string{"resume.docx", "resume", "resume.pdf.exe", "RESUME.TXT"} {
		t.Run(name, func(t *testing.T) {
			file, header := multipartFile(t, name, []byte("content"))
			if _, err := svc.Store(file, header); err != ErrNotPDF {
				t.Errorf("Store(%q) error = %v, want ErrNotPDF", name, err)
			}
		})
	}

	// Nothing may be written for rejected uploads.
	entries, err := os.ReadDir(svc.UploadDir())
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir has %d entries after rejected uploads, want 0", len(entries))
	}
}

func TestStoreAcceptsUppercaseExtension(t *testing.T) {
	svc := testService(t)
	file, header := multipartFile(t, "Resume.PDF", []byte("content"))

	if _, err := svc.Store(file, header); err != nil {
		t.Errorf("Store() error = %v, want nil for .PDF extension", err)
	}
}

func TestStoreUniqueNames(t *testing.T) {
	svc := testService(t)

	names := make(map[string]bool)
	for i := 0; i < 5; i++ {
		file, header := multipartFile(t, "resume.pdf", []byte("content"))
		stored, err := svc.Store(file, header)
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
		if names[stored] {
			t.Fatalf("duplicate stored name %q", stored)
		}
		names[stored] = true
	}
}

func TestStoreSanitizesFilename(t *testing.T) {
	svc := testService(t)
	file, header := multipartFile(t, "my resume (final).pdf", []byte("content"))

	stored, err := svc.Store(file, header)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if strings.ContainsAny(stored, " ()") {
		t.Errorf("stored name %q contains unsanitized characters", stored)
	}
}

func TestRemove(t *testing.T) {
	svc := testService(t)
	file, header := multipartFile(t, "resume.pdf", []byte("content"))

	stored, err := svc.Store(file, header)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if err := svc.Remove(stored); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(svc.UploadDir(), stored)); !os.IsNotExist(err) {
		t.Error("file still exists after Remove()")
	}
}

func TestValidateFilename(t *testing.T) {
	svc := testService(t)

	if err := svc.ValidateFilename("ok.pdf"); err != nil {
		t.Errorf("ValidateFilename(ok.pdf) = %v, want nil", err)
	}
	if err := svc.ValidateFilename("bad.docx"); err == nil {
		t.Error("ValidateFilename(bad.docx) = nil, want error")
	}
}
