// ABOUTME: Markdown writer for accepted posts
// ABOUTME: YAML front matter plus body; optional cover image alongside
package publish

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"blogforge/internal/models"
)

// CoverFunc produces cover image bytes. Wired to the backend image API on
// live runs, nil or a placeholder on dry runs.
type CoverFunc func(ctx context.Context) ([]byte, error)

// frontMatter is the YAML header of a post file. Field order here is the
// order the site builder expects.
type frontMatter struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Tags       []string `yaml:"tags"`
	Slug       string   `yaml:"slug"`
	Excerpt    string   `yaml:"excerpt"`
	CoverImage string   `yaml:"cover_image,omitempty"`
	Author     string   `yaml:"author"`
}

// Writer emits accepted posts as Markdown files with YAML front matter and
// writes the cover image next to the rest of the site assets.
type Writer struct {
	contentDir string
	imagesDir  string
	author     string
	cover      CoverFunc
	logger     *zap.Logger
}

// NewWriter creates a Writer. cover may be nil; the placeholder is used then.
func NewWriter(contentDir, imagesDir, author string, cover CoverFunc, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		contentDir: contentDir,
		imagesDir:  imagesDir,
		author:     author,
		cover:      cover,
		logger:     logger,
	}
}

// Publish writes the post's markdown file and cover image. A failing cover
// generation degrades to the placeholder instead of losing the article.
func (w *Writer) Publish(ctx context.Context, post *models.Post) error {
	if err := os.MkdirAll(w.contentDir, 0755); err != nil {
		return fmt.Errorf("creating content directory: %w", err)
	}

	if post.CoverImage != "" {
		if err := w.writeCover(ctx, post); err != nil {
			return err
		}
	}

	fm := frontMatter{
		Title:      post.Title,
		Date:       post.PublishedAt.Format("2006-01-02"),
		Tags:       post.Tags,
		Slug:       post.Slug,
		Excerpt:    post.Summary,
		CoverImage: post.CoverImage,
		Author:     w.author,
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(post.Body)
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteString("\n")
	}

	name := fmt.Sprintf("%s-%s.md", post.PublishedAt.Format("2006-01-02"), post.Slug)
	path := filepath.Join(w.contentDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing post file: %w", err)
	}

	w.logger.Info("post published",
		zap.String("file", path),
		zap.String("slug", post.Slug))
	return nil
}

// writeCover fetches (or fabricates) the cover bytes and writes them to the
// path already recorded on the post.
func (w *Writer) writeCover(ctx context.Context, post *models.Post) error {
	var img []byte
	var err error

	if w.cover != nil {
		img, err = w.cover(ctx)
		if err != nil {
			w.logger.Warn("cover generation failed, using placeholder", zap.Error(err))
			img = nil
		}
	}
	if img == nil {
		img, err = PlaceholderImage()
		if err != nil {
			return fmt.Errorf("encoding placeholder image: %w", err)
		}
	}

	path := filepath.Join(w.imagesDir, filepath.Base(post.CoverImage))
	if err := os.MkdirAll(w.imagesDir, 0755); err != nil {
		return fmt.Errorf("creating images directory: %w", err)
	}
	if err := os.WriteFile(path, img, 0644); err != nil {
		return fmt.Errorf("writing cover image: %w", err)
	}
	return nil
}

// PlaceholderImage returns a flat dark 1024x576 PNG, used when no image
// backend is available or the image call fails.
func PlaceholderImage() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1024, 576))
	fill := color.RGBA{R: 10, G: 20, B: 15, A: 255}
	for y := 0; y < 576; y++ {
		for x := 0; x < 1024; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
