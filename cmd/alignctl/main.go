// Command alignctl 在命令行上提取文档段落并进行对齐
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/treaty-aligner/config"
	"github.com/fyerfyer/treaty-aligner/internal/alignment"
	"github.com/fyerfyer/treaty-aligner/internal/app"
)

// CLI 命令行定义
var CLI struct {
	Config   string `name:"config" short:"c" help:"Path to config file" default:"config.yaml" type:"path"`
	EnvFile  string `name:"env" help:"Path to .env file" default:".env" type:"path"`
	Provider string `name:"provider" help:"Override LLM provider (azure/openai/ollama)"`
	Verbose  bool   `name:"verbose" short:"v" help:"Enable debug logging"`

	Align   AlignCmd   `cmd:"" help:"Align a Japanese document with its English translation"`
	Extract ExtractCmd `cmd:"" help:"Extract paragraphs from a document"`
	Parse   ParseCmd   `cmd:"" help:"Parse a raw model response into alignment pairs"`
}

// AlignCmd 对齐两个文档
type AlignCmd struct {
	Japanese string        `arg:"" help:"Japanese document" type:"existingfile"`
	English  string        `arg:"" help:"English document" type:"existingfile"`
	Out      string        `name:"out" short:"o" help:"Write JSON result to file instead of stdout" type:"path"`
	Timeout  time.Duration `name:"timeout" help:"Overall timeout" default:"15m"`
	Strict   bool          `name:"strict" help:"Exit with an error instead of printing the fallback pair"`
}

// alignOutput 对齐命令的输出
type alignOutput struct {
	Source   string           `json:"source_file"`
	Target   string           `json:"target_file"`
	Provider string           `json:"provider"`
	Pairs    []alignment.Pair `json:"pairs"`
	Missing  *missing         `json:"missing,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type missing struct {
	Source []string `json:"source,omitempty"`
	Target []string `json:"target,omitempty"`
}

// Run 执行对齐
func (c *AlignCmd) Run(a *app.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	out := alignOutput{
		Source:   c.Japanese,
		Target:   c.English,
		Provider: a.LLM.Name(),
	}

	result, err := a.Alignment.AlignDocuments(ctx, c.Japanese, c.English)
	if err != nil {
		if c.Strict {
			return err
		}
		out.Pairs = alignment.FallbackPairs(err)
		out.Error = err.Error()
	} else {
		out.Pairs = result.Pairs
		if !result.Coverage.Complete() {
			out.Missing = &missing{
				Source: result.Coverage.MissingSource,
				Target: result.Coverage.MissingTarget,
			}
		}
	}

	return writeJSON(c.Out, out)
}

// ExtractCmd 提取文档段落
type ExtractCmd struct {
	File string `arg:"" help:"Document to extract" type:"existingfile"`
	Out  string `name:"out" short:"o" help:"Write JSON result to file instead of stdout" type:"path"`
}

// Run 执行提取
func (c *ExtractCmd) Run(a *app.App) error {
	paragraphs, err := a.Extraction.ExtractFile(context.Background(), c.File)
	if err != nil {
		return err
	}
	return writeJSON(c.Out, paragraphs)
}

// ParseCmd 解析保存下来的模型原始输出
type ParseCmd struct {
	File string `arg:"" optional:"" help:"File containing the raw response (default: stdin)" type:"existingfile"`
}

// Run 执行解析
func (c *ParseCmd) Run(logger *logrus.Logger) error {
	var r io.Reader = os.Stdin
	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	parser := alignment.NewResponseParser(alignment.WithParserLogger(logger))
	pairs, err := parser.Parse(string(raw))
	if err != nil {
		return err
	}
	return writeJSON("", pairs)
}

// writeJSON 输出格式化的JSON
func writeJSON(path string, v interface{}) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("alignctl"),
		kong.Description("Bilingual Japanese/English legal paragraph aligner"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := godotenv.Load(CLI.EnvFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Failed to load %s: %v", CLI.EnvFile, err)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if CLI.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	ctx.Bind(logger)

	// parse 子命令不需要模型和存储
	if ctx.Command() != "parse" && ctx.Command() != "parse <file>" {
		cfg, err := config.Load(CLI.Config)
		ctx.FatalIfErrorf(err)
		if CLI.Provider != "" {
			cfg.LLM.Provider = CLI.Provider
		}

		a, err := app.New(cfg, logger)
		ctx.FatalIfErrorf(err)
		defer a.Close()
		ctx.Bind(a)
	}

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
