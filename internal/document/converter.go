package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

const (
	// 参数模板中的占位符
	placeholderInput     = "{input}"
	placeholderOutputDir = "{output_dir}"

	// DefaultConverterTimeout 转换器默认超时时间
	DefaultConverterTimeout = 60 * time.Second
	// DefaultConverterEncoding 转换器输出文件的默认编码
	DefaultConverterEncoding = "ms932"
)

var errNoConverter = errors.New("legacy converter is not configured")

// ConverterConfig 外部转换器配置
type ConverterConfig struct {
	Command   string            // 可执行文件
	Args      []string          // 参数，支持 {input} 和 {output_dir} 占位符
	WorkDir   string            // 工作目录
	Env       map[string]string // 额外的环境变量
	OutputDir string            // 输出目录
	Encoding  string            // 输出文件编码
	Timeout   time.Duration     // 超时时间
}

// Converter 调用外部旧格式转换器并读取其文本输出
// 每次调用相互独立，可以并发使用
type Converter struct {
	command   string
	args      []string
	workDir   string
	env       []string
	outputDir string
	encoding  encoding.Encoding
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// ConverterOption 转换器选项
type ConverterOption func(*Converter)

// WithConverterLogger 设置日志记录器
func WithConverterLogger(logger logrus.FieldLogger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter 创建转换器
func NewConverter(cfg ConverterConfig, opts ...ConverterOption) (*Converter, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errNoConverter
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("converter output directory is required")
	}

	enc, err := lookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	outputDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve converter output directory: %v", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConverterTimeout
	}

	// 环境变量按键排序，保证命令行可复现
	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+cfg.Env[k])
	}

	c := &Converter{
		command:   cfg.Command,
		args:      append([]string(nil), cfg.Args...),
		workDir:   cfg.WorkDir,
		env:       env,
		outputDir: outputDir,
		encoding:  enc,
		timeout:   timeout,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// lookupEncoding 根据名称查找编码
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ms932", "cp932", "windows-31j", "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	case "euc-jp", "eucjp":
		return japanese.EUCJP, nil
	case "iso-2022-jp":
		return japanese.ISO2022JP, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unsupported converter encoding: %s", name)
	}
}

// Convert 运行转换器，返回解码后的文本行
// 超时、非零退出或缺少输出文件都会返回 ExtractionError，不会尝试读取部分输出
func (c *Converter) Convert(ctx context.Context, inputPath string) ([]string, error) {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, newExtractionError(ErrConverterFailed, inputPath, err)
	}

	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return nil, newExtractionError(ErrConverterFailed, inputPath,
			fmt.Errorf("failed to create output directory: %v", err))
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.command, c.expandArgs(absInput)...)
	cmd.Dir = c.workDir
	cmd.Env = append(os.Environ(), c.env...)
	// 进程被杀死后，等待输出管道关闭的最长时间
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.WithFields(logrus.Fields{
		"command": cmd.String(),
		"dir":     c.workDir,
	}).Info("Executing legacy converter")

	start := time.Now()
	runErr := cmd.Run()

	logFields := logrus.Fields{
		"input":   absInput,
		"elapsed": time.Since(start).String(),
		"stdout":  stdout.String(),
		"stderr":  stderr.String(),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		c.logger.WithFields(logFields).Error("Legacy converter timed out")
		return nil, newExtractionError(ErrConverterTimeout, inputPath,
			fmt.Errorf("no output after %s", c.timeout))
	}
	if runErr != nil {
		c.logger.WithFields(logFields).WithError(runErr).Error("Legacy converter failed")
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, newExtractionError(ErrConverterFailed, inputPath,
				fmt.Errorf("exit code %d", exitErr.ExitCode()))
		}
		return nil, newExtractionError(ErrConverterFailed, inputPath, runErr)
	}
	c.logger.WithFields(logFields).Debug("Legacy converter finished")

	outputFile := c.OutputPath(absInput)
	raw, err := os.ReadFile(outputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newExtractionError(ErrOutputMissing, inputPath, fmt.Errorf("expected %s", outputFile))
		}
		return nil, newExtractionError(ErrConverterFailed, inputPath, err)
	}

	// 读取后立即删除临时输出文件
	if err := os.Remove(outputFile); err != nil {
		c.logger.WithError(err).WithField("file", outputFile).Warn("Failed to remove converter output")
	}

	text, err := c.encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, newExtractionError(ErrConverterFailed, inputPath,
			fmt.Errorf("failed to decode converter output: %v", err))
	}

	return SplitLines(string(text)), nil
}

// OutputPath 返回转换器针对输入文件生成的文本文件路径
// 规则：输出目录 + 输入文件名(去掉扩展名) + ".txt"
func (c *Converter) OutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	if ext := filepath.Ext(base); ext != "" && len(ext) < len(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(c.outputDir, base+".txt")
}

// expandArgs 替换参数中的占位符
func (c *Converter) expandArgs(inputPath string) []string {
	replacer := strings.NewReplacer(
		placeholderInput, inputPath,
		placeholderOutputDir, c.outputDir,
	)
	args := make([]string, len(c.args))
	for i, arg := range c.args {
		args[i] = replacer.Replace(arg)
	}
	return args
}

// LegacyParser 旧格式文档解析器：外部转换 + 段落重建
type LegacyParser struct {
	converter *Converter
}

// NewLegacyParser 创建旧格式文档解析器
func NewLegacyParser(converter *Converter) Parser {
	return &LegacyParser{converter: converter}
}

// Parse 转换文档并把文本行重建为段落
func (p *LegacyParser) Parse(ctx context.Context, filePath string) ([]string, error) {
	lines, err := p.converter.Convert(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return Reconstruct(lines), nil
}
