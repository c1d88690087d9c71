package layout

import (
	"fmt"
	"strings"
)

// Ellipsis 追加在被截断的第二行末尾。
const Ellipsis = "..."

// MaxDynamicLines 是动态文本保留的最大行数。
const MaxDynamicLines = 2

// WrapText 按空白分词，贪心地把尽可能多的词放入宽度不超过 maxWidth 的一行。
// 单个超宽的词独占一行，不会在词内断开。
func WrapText(text string, font FontResource, maxWidth int, ts Typesetter) ([]string, error) {
	words := strings.Fields(text)
	var lines []string
	for len(words) > 0 {
		line := words[0]
		words = words[1:]
		for len(words) > 0 {
			candidate := line + " " + words[0]
			ext, err := ts.Measure(candidate, font)
			if err != nil {
				return nil, fmt.Errorf("测量文本失败: %w", err)
			}
			if ext.Width > maxWidth {
				break
			}
			line = candidate
			words = words[1:]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Truncate 将多于两行的结果截为两行，并从第二行末尾逐字符删除，
// 直到“剩余内容 + ...”的宽度不超过 maxWidth。
// 删到空串仍放不下时保留原第二行。
func Truncate(lines []string, font FontResource, maxWidth int, ts Typesetter) ([]string, error) {
	if len(lines) <= MaxDynamicLines {
		return lines, nil
	}
	out := append([]string(nil), lines[:MaxDynamicLines]...)
	last := []rune(out[MaxDynamicLines-1])
	for len(last) > 0 {
		candidate := string(last) + Ellipsis
		ext, err := ts.Measure(candidate, font)
		if err != nil {
			return nil, fmt.Errorf("测量文本失败: %w", err)
		}
		if ext.Width <= maxWidth {
			out[MaxDynamicLines-1] = candidate
			break
		}
		last = last[:len(last)-1]
	}
	return out, nil
}

// measureLines 为每一行回填宽高。
func measureLines(lines []string, font FontResource, ts Typesetter) ([]TextLine, error) {
	out := make([]TextLine, 0, len(lines))
	for _, l := range lines {
		ext, err := ts.Measure(l, font)
		if err != nil {
			return nil, fmt.Errorf("测量文本失败: %w", err)
		}
		out = append(out, TextLine{Content: l, Width: ext.Width, Height: ext.Height})
	}
	return out, nil
}

// blockExtent 汇总文本块：高度为 Σ(行高 + 行距)，宽度为最宽一行，
// 同时返回最高的单行高度用于计算“标准行”。
func blockExtent(lines []TextLine, spacing int) (width, height, lineHeight int) {
	for _, l := range lines {
		height += l.Height + spacing
		width = max(width, l.Width)
		lineHeight = max(lineHeight, l.Height)
	}
	return width, height, lineHeight
}
