package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UploadBasePath  = "./uploads"
	AttachmentsPath = "./uploads/attachments"
)

func InitLocalStorage() error {
	for _, dir := range []string{UploadBasePath, AttachmentsPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

func UploadToLocal(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102-150405"),
		uuid.New().String()[:8],
		ext,
	)

	fullPath := filepath.Join(AttachmentsPath, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	return "/" + filepath.ToSlash(filepath.Join("uploads/attachments", filename)), nil
}

func DeleteFromLocal(urlPath string) error {
	cleaned := strings.TrimPrefix(urlPath, "/")
	if !strings.HasPrefix(cleaned, "uploads/") {
		return fmt.Errorf("refusing to delete outside uploads: %s", urlPath)
	}
	return os.Remove(filepath.Clean(cleaned))
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
