// Package objectstore реализует публичный бакет для картинок товаров на файловой системе.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")
)

// DefaultMaxSize ограничение размера загружаемого файла по умолчанию.
const DefaultMaxSize int64 = 5 << 20

type Bucket struct {
	name      string
	dir       string
	publicURL string
	maxSize   int64
}

// NewBucket создаёт каталог бакета root/name, если его ещё нет.
// publicURL: базовый адрес, под которым раздаются все бакеты.
func NewBucket(root, name, publicURL string, maxSize int64) (*Bucket, error) {
	if name == "" {
		return nil, errors.New("bucket name is empty")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket dir %s: %w", dir, err)
	}
	return &Bucket{
		name:      name,
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxSize:   maxSize,
	}, nil
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Dir() string { return b.dir }

// Upload сохраняет картинку под случайным именем с расширением исходного файла
// и возвращает её публичный URL. Тип определяется по содержимому, не по имени.
func (b *Bucket) Upload(ctx context.Context, originalName string, body io.Reader) (string, error) {
	const op = "objectstore.Bucket.Upload"

	data, err := io.ReadAll(io.LimitReader(body, b.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("%s: failed to read body: %w", op, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyFile)
	}
	if int64(len(data)) > b.maxSize {
		return "", fmt.Errorf("%s: %w", op, ErrTooLarge)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%s: %s: %w", op, mt.String(), ErrUnsupportedType)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = mt.Extension()
	}
	fileName := uuid.NewString() + ext

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.OpenFile(filepath.Join(b.dir, fileName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create file: %w", op, err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return "", fmt.Errorf("%s: failed to write file: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: failed to close file: %w", op, err)
	}

	return b.PublicURL(fileName), nil
}

// PublicURL возвращает адрес объекта без проверки его существования.
func (b *Bucket) PublicURL(fileName string) string {
	return b.publicURL + "/" + b.name + "/" + fileName
}

// Handler раздаёт файлы бакета; prefix это путь маршрута, который нужно отрезать.
func (b *Bucket) Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(http.Dir(b.dir)))
}
