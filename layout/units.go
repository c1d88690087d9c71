package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 布局全程使用整数像素坐标，原点位于画布左上角，y 轴向下。

// Point 表示画布上的一个像素坐标。
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size 表示宽高（像素）。
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Span 描述一段水平区间，用于 center_on_x。
type Span struct {
	X int `json:"x"`
	W int `json:"w"`
}

// Extent 是一行文本的测量结果（像素）。
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a"`
}

// 常用颜色。
var (
	White = Color{R: 255, G: 255, B: 255, A: 255}
	Black = Color{A: 255}
)

var namedColors = map[string]Color{
	"white":       White,
	"black":       Black,
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"red":         {R: 255, A: 255},
	"transparent": {},
}

// ParseColor 解析 #RGB、#RRGGBB、#RRGGBBAA 以及少量颜色名。
func ParseColor(value string) (Color, error) {
	v := strings.TrimSpace(value)
	if c, ok := namedColors[strings.ToLower(v)]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	if len(hex) == 6 {
		n = n<<8 | 0xff
	}
	return Color{
		R: int(n >> 24 & 0xff),
		G: int(n >> 16 & 0xff),
		B: int(n >> 8 & 0xff),
		A: int(n & 0xff),
	}, nil
}

// MustColor 与 ParseColor 相同，解析失败时 panic，仅用于常量初始化。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex 返回 #RRGGBB 形式（不透明时）或 #RRGGBBAA。
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// floorDiv 是向下取整的整数除法，负数时与截断除法不同。
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
