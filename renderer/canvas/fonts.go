package canvasrenderer

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/cardshot/fonts"
	"github.com/ByLCY/cardshot/layout"
)

// ErrFontLoad 表示连内置字体都无法加载。
var ErrFontLoad = errors.New("字体加载失败")

// pxToPt 把像素字号换算为 canvas 使用的 pt（画布上 1 单位 = 1mm = 1px）。
const pxToPt = 72 / 25.4

// ensureFontFamily 依次尝试自定义路径、默认常规字体、内置字体，结果按路径缓存。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	candidates := []string{font.Path, r.defaultFont, fonts.Default(font.Bold)}
	var errs []error
	for _, path := range candidates {
		if path == "" {
			continue
		}
		family, err := r.loadFamily(path)
		if err != nil {
			errs = append(errs, err)
			r.logger.Warn("字体不可用，尝试下一个候选", slog.String("path", path), slog.Any("error", err))
			continue
		}
		r.fontFamilies[key] = family
		return family, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrFontLoad, errors.Join(errs...))
}

func (r *Renderer) loadFamily(path string) (*canvas.FontFamily, error) {
	data, err := r.loadFontBytes(path)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(path)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	return family, nil
}

func (r *Renderer) loadFontBytes(path string) ([]byte, error) {
	if fonts.IsBuiltin(path) {
		return fonts.Load(path)
	}
	if r.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fontFace(font layout.FontResource, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(float64(font.Size)*pxToPt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

// Measure 实现 layout.Typesetter：返回单行文本的像素宽度与行高（上升部 + 下降部）。
func (r *Renderer) Measure(content string, font layout.FontResource) (layout.Extent, error) {
	face, err := r.fontFace(font, layout.Black)
	if err != nil {
		return layout.Extent{}, err
	}
	m := face.Metrics()
	return layout.Extent{
		Width:  int(math.Round(face.TextWidth(content))),
		Height: int(math.Round(m.Ascent + m.Descent)),
	}, nil
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%t", font.Path, font.Bold)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}
