package canvasrenderer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	_ "golang.org/x/image/webp" // 横幅常见为 webp
)

// ErrAssetMissing 表示图片无法读取或解码；渲染时只省略对应元素。
var ErrAssetMissing = errors.New("图片资源不可用")

// AssetLoader 按路径读取图片。
type AssetLoader interface {
	Load(path string) (image.Image, error)
}

// FileAssets 从文件系统读取图片，相对路径以 BaseDir 为根。
type FileAssets struct {
	BaseDir string
}

// Load 读取并解码图片，失败时返回包装了 ErrAssetMissing 的错误。
func (f FileAssets) Load(path string) (image.Image, error) {
	full := path
	if f.BaseDir != "" && !filepath.IsAbs(full) {
		full = filepath.Join(f.BaseDir, full)
	}
	img, err := imaging.Open(full, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetMissing, path, err)
	}
	return img, nil
}

// fit 把图片缩放到目标像素尺寸（Lanczos），不保持比例。
func fit(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// ellipseMask 生成内切于 w×h 的椭圆遮罩。
func ellipseMask(w, h int) *image.Alpha {
	rx, ry := float64(w)/2, float64(h)/2
	return pathMask(w, h, rx, ry, canvas.Ellipse(rx, ry))
}

// roundedMask 生成 w×h、圆角半径为 radius 的遮罩。
func roundedMask(w, h, radius int) *image.Alpha {
	return pathMask(w, h, 0, 0, roundedRect(float64(w), float64(h), float64(radius)))
}

// pathMask 在 w×h 的画布上以 (x, y) 为偏移填充路径，并把覆盖率转为 alpha 通道。
func pathMask(w, h int, x, y float64, p *canvas.Path) *image.Alpha {
	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(canvas.Black)
	ctx.DrawPath(x, y, p)
	raster := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.Draw(mask, mask.Bounds(), raster, raster.Bounds().Min, draw.Src)
	return mask
}

// applyMask 返回 img 与遮罩相乘后的副本。
func applyMask(img image.Image, mask *image.Alpha) *image.NRGBA {
	out := image.NewNRGBA(mask.Bounds())
	draw.DrawMask(out, out.Bounds(), img, img.Bounds().Min, mask, image.Point{}, draw.Src)
	return out
}

// roundedRect 返回左下角位于原点的（圆角）矩形，半径不超过短边的一半。
func roundedRect(w, h, r float64) *canvas.Path {
	r = min(r, w/2, h/2)
	if r <= 0 {
		return canvas.Rectangle(w, h)
	}
	return canvas.RoundedRectangle(w, h, r)
}
