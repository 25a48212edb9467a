package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/chachabrian/carrental-backend/internal/config"
	"github.com/google/uuid"
)

// MaxImageSize bounds uploaded car images.
const MaxImageSize = 5 << 20

// imageExtensions maps the sniffed content type to the stored file's
// extension. The client's filename is never trusted.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var (
	ErrNotAnImage    = errors.New("uploaded file is not an image")
	ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxImageSize)
)

// Storage stores car images in S3, or on local disk when S3 is not
// configured.
type Storage struct {
	uploader  *s3manager.Uploader
	bucket    string
	region    string
	uploadDir string
	baseURL   string
}

// InitStorage picks S3 when every AWS setting is present.
func InitStorage(cfg config.App) (*Storage, error) {
	if cfg.S3Enabled() {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWS.Region),
			Credentials: credentials.NewStaticCredentials(
				cfg.AWS.AccessKeyID,
				cfg.AWS.SecretAccessKey,
				"",
			),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %v", err)
		}

		slog.Info("AWS S3 storage initialized", "bucket", cfg.AWS.Bucket)
		return &Storage{
			uploader: s3manager.NewUploader(sess),
			bucket:   cfg.AWS.Bucket,
			region:   cfg.AWS.Region,
		}, nil
	}

	if err := os.MkdirAll(filepath.Join(cfg.UploadDir, "cars"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	slog.Warn("AWS S3 not configured; using local file storage", "dir", cfg.UploadDir)
	return NewLocalStorage(cfg.UploadDir, cfg.BaseURL), nil
}

func NewLocalStorage(uploadDir, baseURL string) *Storage {
	return &Storage{uploadDir: uploadDir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Storage) IsUsingS3() bool { return s.uploader != nil }

// UploadDir is the directory served at /uploads for local storage.
func (s *Storage) UploadDir() string { return s.uploadDir }

// UploadImage stores file under folder and returns its public URL.
func (s *Storage) UploadImage(file *multipart.FileHeader, folder string) (string, error) {
	if file.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, io.LimitReader(src, MaxImageSize+1)); err != nil {
		return "", fmt.Errorf("failed to read file: %v", err)
	}
	if buffer.Len() > MaxImageSize {
		return "", ErrImageTooLarge
	}

	contentType := http.DetectContentType(buffer.Bytes())
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", ErrNotAnImage
	}

	fileName := uuid.NewString() + ext
	if s.IsUsingS3() {
		return s.uploadToS3(buffer.Bytes(), contentType, path.Join(folder, fileName))
	}
	return s.uploadLocally(buffer.Bytes(), folder, fileName)
}

func (s *Storage) uploadToS3(data []byte, contentType, key string) (string, error) {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *Storage) uploadLocally(data []byte, folder, fileName string) (string, error) {
	folderPath := filepath.Join(s.uploadDir, folder)
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folderPath, fileName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, folder, fileName), nil
}
