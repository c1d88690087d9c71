package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名，路径写作 "embed:goregular" 或 "embed:gobold"。
const (
	Regular = "embed:goregular"
	Bold    = "embed:gobold"
)

var builtin = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
}

// IsBuiltin 判断 path 是否指向内置字体。
func IsBuiltin(path string) bool {
	return strings.HasPrefix(path, "embed:")
}

// Load 返回内置字体的字节数据，path 可写为 "embed:gobold" 或直接 "gobold"。
func Load(path string) ([]byte, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(path, "embed:"), ".ttf")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在", name)
	}
	return data, nil
}

// Default 返回粗细对应的内置字体路径。
func Default(bold bool) string {
	if bold {
		return Bold
	}
	return Regular
}
