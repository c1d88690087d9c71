package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/cardshot/layout"
	"github.com/ByLCY/cardshot/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas and encodes them as PNG.
// One canvas unit is one output pixel; layout coordinates have a top-left origin and are
// flipped onto the canvas' bottom-left origin while drawing.
type Renderer struct {
	baseDir            string
	assets             AssetLoader
	defaultFont        string
	fallbackBackground layout.Color
	logger             *slog.Logger

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir resolves relative font and asset paths.
	BaseDir string
	// Assets loads icon, banner and background images; defaults to FileAssets{BaseDir}.
	Assets AssetLoader
	// DefaultFont is tried when a text's own font cannot be loaded, before the built-in font.
	DefaultFont string
	// FallbackBackground replaces an unreadable background image; defaults to #CCCCCC.
	FallbackBackground *layout.Color
	// Logger receives asset and font warnings; defaults to layout.Logger().
	Logger *slog.Logger
}

// NewRenderer creates a renderer reading assets from baseDir.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with an injected asset loader and fallbacks.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:            opts.BaseDir,
		assets:             opts.Assets,
		defaultFont:        opts.DefaultFont,
		fallbackBackground: layout.MustColor("#CCCCCC"),
		logger:             opts.Logger,
		fontFamilies:       map[string]*canvas.FontFamily{},
	}
	if r.assets == nil {
		r.assets = FileAssets{BaseDir: opts.BaseDir}
	}
	if opts.FallbackBackground != nil {
		r.fallbackBackground = *opts.FallbackBackground
	}
	if r.logger == nil {
		r.logger = layout.Logger()
	}
	return r
}

// Render composes the result and returns PNG bytes.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	img, err := r.Rasterize(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Rasterize paints background, rectangles, icons, banners and texts in that order.
// Unreadable images are skipped with a warning; font failures abort.
func (r *Renderer) Rasterize(result *layout.Result) (*image.RGBA, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Canvas.W <= 0 || result.Canvas.H <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", result.Canvas.W, result.Canvas.H)
	}

	c := canvas.New(float64(result.Canvas.W), float64(result.Canvas.H))
	p := &painter{r: r, ctx: canvas.NewContext(c), height: float64(result.Canvas.H)}

	p.background(result.Background, result.Canvas)
	for _, rc := range result.Rects {
		p.rect(rc)
	}
	for _, ic := range result.Icons {
		p.picture(ic, func(w, h int) *image.Alpha {
			if !ic.Rounded {
				return nil
			}
			return ellipseMask(w, h)
		})
	}
	for _, bn := range result.Banners {
		p.picture(bn, func(w, h int) *image.Alpha {
			if bn.Radius <= 0 {
				return nil
			}
			return roundedMask(w, h, bn.Radius)
		})
	}
	for _, tx := range result.Texts {
		if err := p.text(tx); err != nil {
			return nil, fmt.Errorf("绘制文本 %s 失败: %w", tx.ID, err)
		}
	}
	return rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace), nil
}

// painter holds the drawing state of one Rasterize call.
type painter struct {
	r      *Renderer
	ctx    *canvas.Context
	height float64
}

// flip converts a top-left based box to the canvas' bottom-left origin.
func (p *painter) flip(y, h int) float64 {
	return p.height - float64(y) - float64(h)
}

func (p *painter) background(bg layout.Background, size layout.Size) {
	col := bg.Color
	if bg.Path != "" {
		img, err := p.r.assets.Load(bg.Path)
		if err == nil {
			p.ctx.DrawImage(0, 0, fit(img, size.W, size.H), canvas.DPMM(1))
			return
		}
		p.r.logger.Warn("背景图片不可用，使用备用颜色", slog.String("path", bg.Path), slog.String("fallback", p.r.fallbackBackground.Hex()), slog.Any("error", err))
		col = p.r.fallbackBackground
	}
	p.ctx.SetFillColor(colorFromLayout(col))
	p.ctx.DrawPath(0, 0, canvas.Rectangle(float64(size.W), float64(size.H)))
}

func (p *painter) rect(rc layout.Element) {
	if rc.Width <= 0 || rc.Height <= 0 {
		return
	}
	p.ctx.SetFillColor(colorFromLayout(rc.Color))
	p.ctx.DrawPath(float64(rc.X), p.flip(rc.Y, rc.Height), roundedRect(float64(rc.Width), float64(rc.Height), float64(rc.Radius)))
}

// picture draws an icon or banner resized to its box, optionally masked.
func (p *painter) picture(el layout.Element, mask func(w, h int) *image.Alpha) {
	if el.Width <= 0 || el.Height <= 0 || el.Path == "" {
		return
	}
	src, err := p.r.assets.Load(el.Path)
	if err != nil {
		p.r.logger.Warn("图片不可用，已省略", slog.String("id", el.ID), slog.String("kind", el.Kind.String()), slog.String("path", el.Path), slog.Any("error", err))
		return
	}
	var img image.Image = fit(src, el.Width, el.Height)
	if m := mask(el.Width, el.Height); m != nil {
		img = applyMask(img, m)
	}
	p.ctx.DrawImage(float64(el.X), p.flip(el.Y, el.Height), img, canvas.DPMM(1))
}

// text draws one line per row: baseline at row top + ascent, rows advance by line height + spacing.
func (p *painter) text(tx layout.Element) error {
	face, err := p.r.fontFace(tx.Font, tx.Color)
	if err != nil {
		return err
	}
	ascent := face.Metrics().Ascent
	top := float64(tx.Y)
	for _, line := range tx.Lines {
		baseline := p.height - (top + ascent)
		p.ctx.DrawText(float64(tx.X), baseline, canvas.NewTextLine(face, line.Content, canvas.Left))
		top += float64(line.Height + tx.LineSpacing)
	}
	return nil
}
