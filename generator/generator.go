// Package generator 串联一次完整渲染：查找模板、构造内容、布局、合成并写出文件。
package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ByLCY/cardshot/binding"
	"github.com/ByLCY/cardshot/config"
	"github.com/ByLCY/cardshot/content"
	"github.com/ByLCY/cardshot/fonts"
	"github.com/ByLCY/cardshot/layout"
	"github.com/ByLCY/cardshot/renderer"
	canvasrenderer "github.com/ByLCY/cardshot/renderer/canvas"
)

// Options 配置一次渲染。
type Options struct {
	// BaseDir 是相对资源与字体路径的根目录。
	BaseDir string
	// Renderer 为空时按目录默认值创建 canvas 渲染器；必须同时实现 layout.Typesetter。
	Renderer renderer.Renderer
	// DebugPath 非空时输出布局调试 JSON。
	DebugPath string
	Logger    *slog.Logger
}

// Report 描述一次成功的渲染。
type Report struct {
	TemplateID    string
	Output        string
	Bytes         int
	Shift         int
	ContentBottom int
	SHA256        string
	Duration      time.Duration
	// Unused 是没有被模板使用的内容键。
	Unused []string
}

// Generate 执行一次渲染，只有合成成功后才创建输出目录并写入文件。
func Generate(cat *config.Catalog, inv content.Invocation, opts Options) (*Report, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = layout.Logger()
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	tpl, err := cat.Template(inv.TemplateID)
	if err != nil {
		return nil, err
	}

	bundle := content.NewBundle(inv)
	values := bundle.Values()
	bound, unused := layout.BindContent(tpl, values)
	unused = withoutKey(unused, content.KeyTemplate)
	if len(unused) > 0 {
		logger.Debug("内容键未被模板使用", slog.String("template", tpl.ID), slog.Any("keys", unused))
	}

	r := opts.Renderer
	if r == nil {
		if r, err = NewRenderer(cat.Defaults, opts.BaseDir, logger); err != nil {
			return nil, err
		}
	}
	ts, ok := r.(layout.Typesetter)
	if !ok {
		return nil, fmt.Errorf("renderer 未实现排版接口")
	}

	res, err := layout.Build(tpl, bound, layout.BuildOptions{
		Typesetter: ts,
		Fonts:      FontDefaults(cat.Defaults),
		Dynamic:    cat.Defaults.Dynamic,
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	if opts.DebugPath != "" {
		if err := writeDebug(res, opts.DebugPath); err != nil {
			return nil, err
		}
	}

	png, err := r.Render(res)
	if err != nil {
		return nil, fmt.Errorf("合成图片失败: %w", err)
	}

	out := OutputPath(cat.Defaults, inv.Output, values)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, png, 0o644); err != nil {
		return nil, fmt.Errorf("写入图片失败: %w", err)
	}

	sum := sha256.Sum256(png)
	report := &Report{
		TemplateID:    tpl.ID,
		Output:        out,
		Bytes:         len(png),
		Shift:         res.Shift,
		ContentBottom: res.ContentBottom,
		SHA256:        hex.EncodeToString(sum[:]),
		Duration:      time.Since(start),
		Unused:        unused,
	}
	logger.Info("已生成图片", slog.String("template", tpl.ID), slog.String("output", out), slog.Int("shift", res.Shift), slog.Duration("duration", report.Duration))
	return report, nil
}

// NewRenderer 按目录默认值创建 canvas 渲染器。
func NewRenderer(d config.Defaults, baseDir string, logger *slog.Logger) (*canvasrenderer.Renderer, error) {
	bg, err := layout.ParseColor(d.FallbackBackground)
	if err != nil {
		return nil, fmt.Errorf("defaults.fallback_background: %w", err)
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:            baseDir,
		DefaultFont:        d.FontPath,
		FallbackBackground: &bg,
		Logger:             logger,
	}), nil
}

// FontDefaults 把目录中的字体路径转换为布局默认值，未配置时使用内置字体。
func FontDefaults(d config.Defaults) layout.FontDefaults {
	f := layout.FontDefaults{Regular: d.FontPath, Bold: d.BoldFontPath}
	if f.Regular == "" {
		f.Regular = fonts.Regular
	}
	if f.Bold == "" {
		f.Bold = fonts.Bold
	}
	return f
}

// OutputPath 返回输出文件路径：name 为空时按 output_pattern 生成，
// 相对路径一律放在 output_dir 下。
func OutputPath(d config.Defaults, name string, values map[string]string) string {
	if name == "" {
		pattern := d.OutputPattern
		if pattern == "" {
			pattern = config.DefaultOutputPattern
		}
		name = binding.Interpolate(pattern, values)
	}
	if filepath.IsAbs(name) {
		return name
	}
	dir := d.OutputDir
	if dir == "" {
		dir = "output"
	}
	return filepath.Join(dir, name)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func withoutKey(keys []string, drop string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != drop {
			out = append(out, k)
		}
	}
	return out
}
