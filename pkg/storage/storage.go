package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo 文件元数据结构
type FileInfo struct {
	ID       string // 文件唯一标识符
	Name     string // 原始文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Ext 返回原始文件名的扩展名(小写)
func (f FileInfo) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Storage 上传文件的暂存接口
// 上传的文件以UUID命名保存，处理完成后由调用方删除
type Storage interface {
	// Save 保存文件并返回文件信息
	Save(ctx context.Context, reader io.Reader, filename string) (FileInfo, error)

	// Get 获取文件内容
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, id string) error

	// List 列出所有文件
	List(ctx context.Context) ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, id string) (bool, error)
}

// LocalPather 可以直接提供本地文件路径的存储
type LocalPather interface {
	FilePath(id string) (string, error)
}

// 存储类型
const (
	TypeLocal = "local"
	TypeMinio = "minio"
)

// Config 存储配置
type Config struct {
	Type  string      // local 或 minio
	Local LocalConfig // 本地存储配置
	Minio MinioConfig // MinIO配置
}

// New 根据配置创建存储实例
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", TypeLocal:
		return NewLocalStorage(cfg.Local)
	case TypeMinio:
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// Materialize 返回可供解析器读取的本地文件路径
// 本地存储直接返回原路径；其他存储下载到临时目录，保留原扩展名以便识别格式
// 返回的 cleanup 只清理临时副本，不删除存储中的文件
func Materialize(ctx context.Context, s Storage, info FileInfo, tmpDir string) (path string, cleanup func(), err error) {
	if lp, ok := s.(LocalPather); ok {
		path, err := lp.FilePath(info.ID)
		if err != nil {
			return "", nil, err
		}
		return path, func() {}, nil
	}

	rc, err := s.Get(ctx, info.ID)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(tmpDir, info.ID+"-*"+info.Ext())
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %v", err)
	}
	cleanup = func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to copy stored file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %v", err)
	}

	return tmp.Name(), cleanup, nil
}

// getMimeType 简单根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".jtd", ".jtdc":
		return "application/x-js-taro"
	default:
		return "application/octet-stream"
	}
}

// idFromName 从存储文件名中提取ID
func idFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
