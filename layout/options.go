package layout

// BuildOptions 配置布局阶段所需的依赖，例如测量后端。
type BuildOptions struct {
	Typesetter Typesetter
	Fonts      FontDefaults
	// Dynamic 列出会被截断为两行并推动级联位移的文本 id，为空时取 DefaultDynamic。
	Dynamic []string
}

// FontDefaults 为未指定 font_path 的文本提供默认字体路径，空字符串表示内置字体。
type FontDefaults struct {
	Regular string
	Bold    string
}

// DefaultDynamic 是默认的动态文本 id。
var DefaultDynamic = []string{"title", "description"}

// Typesetter 负责测量单行文本的像素宽高，由渲染后端实现。
type Typesetter interface {
	Measure(content string, font FontResource) (Extent, error)
}
