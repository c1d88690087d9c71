package renderer

import "github.com/ByLCY/cardshot/layout"

// Renderer 将布局结果合成为最终图像。
// Render 返回编码后的 PNG 字节以及可能的错误；布局结果在渲染期间只读。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
