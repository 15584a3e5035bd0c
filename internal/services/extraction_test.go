package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/treaty-aligner/internal/document"
	"github.com/fyerfyer/treaty-aligner/pkg/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	s, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	return s
}

// stubExtractor 按文件名返回预设结果
type stubExtractor struct {
	results map[string][]string
	errs    map[string]error
	calls   atomic.Int32
}

func (e *stubExtractor) Extract(ctx context.Context, filePath string) ([]string, error) {
	e.calls.Add(1)
	name := filepath.Base(filePath)
	if err, ok := e.errs[name]; ok {
		return nil, err
	}
	return e.results[name], nil
}

func TestExtractPair(t *testing.T) {
	extractor := &stubExtractor{results: map[string][]string{
		"ja.jtd":  {"第一条"},
		"en.docx": {"Article 1", "Definitions"},
	}}
	srv := NewExtractionService(extractor, newTestStorage(t), WithExtractionLogger(newTestLogger()))

	japanese, english, err := srv.ExtractPair(context.Background(), "/in/ja.jtd", "/in/en.docx")
	require.NoError(t, err)
	assert.Equal(t, []string{"第一条"}, japanese)
	assert.Equal(t, []string{"Article 1", "Definitions"}, english)
	assert.Equal(t, int32(2), extractor.calls.Load())
}

func TestExtractPairFailure(t *testing.T) {
	timeout := &document.ExtractionError{Kind: document.ErrConverterTimeout, Path: "ja.jtd"}
	extractor := &stubExtractor{
		results: map[string][]string{"en.docx": {"Article 1"}},
		errs:    map[string]error{"ja.jtd": timeout},
	}
	srv := NewExtractionService(extractor, newTestStorage(t), WithExtractionLogger(newTestLogger()))

	japanese, english, err := srv.ExtractPair(context.Background(), "ja.jtd", "en.docx")
	require.Error(t, err)
	assert.Nil(t, japanese)
	assert.Nil(t, english)
	assert.True(t, errors.Is(err, document.ErrConverterTimeout))
}

func TestExtractUploadsRemovesStagedFiles(t *testing.T) {
	store := newTestStorage(t)
	srv := NewExtractionService(document.NewFactory(nil), store, WithExtractionLogger(newTestLogger()))

	japanese, english, err := srv.ExtractUploads(context.Background(),
		Upload{Name: "ja.txt", Reader: strings.NewReader("第一条\n\n第二条")},
		Upload{Name: "en.txt", Reader: strings.NewReader("Article 1\nDefinitions")},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"第一条", "第二条"}, japanese)
	assert.Equal(t, []string{"Article 1\nDefinitions"}, english)

	files, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExtractUploadsRemovesStagedFilesOnError(t *testing.T) {
	store := newTestStorage(t)
	srv := NewExtractionService(document.NewFactory(nil), store, WithExtractionLogger(newTestLogger()))

	_, _, err := srv.ExtractUploads(context.Background(),
		Upload{Name: "ja.jtd", Reader: strings.NewReader("binary")},
		Upload{Name: "en.txt", Reader: strings.NewReader("Article 1")},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrUnsupportedFormat))

	files, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestExtractUpload(t *testing.T) {
	store := newTestStorage(t)
	srv := NewExtractionService(document.NewFactory(nil), store, WithExtractionLogger(newTestLogger()))

	paragraphs, err := srv.ExtractUpload(context.Background(),
		Upload{Name: "treaty.md", Reader: strings.NewReader("# Article 1\n\nDefinitions")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Article 1", "Definitions"}, paragraphs)

	assert.True(t, srv.Supports("treaty.docx"))
	assert.False(t, srv.Supports("treaty.jtd"))
	assert.False(t, srv.Supports("treaty.xls"))
}
