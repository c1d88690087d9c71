package layout

import (
	"sort"

	"github.com/ByLCY/cardshot/binding"
)

// Content 是按元素 id 绑定好的运行时内容。
type Content struct {
	// Text 覆盖文本元素的内容（key 为文本 id）。
	Text map[string]string
	// Assets 覆盖图标/横幅的图片路径（key 为元素 id）。
	Assets map[string]string
	// Values 为静态文本中 ${key} 占位符提供取值。
	Values map[string]string
}

// AssetKey 返回图片类元素在内容包中的键，例如 icon → icon_path。
func AssetKey(id string) string { return id + "_path" }

// BindContent 根据模板已知的 id 集合把内容包拆分为文本与图片覆盖表，
// 同时返回既没有匹配元素、也没有被 ${key} 引用的键，便于发现拼写错误。
func BindContent(t *Template, values map[string]string) (Content, []string) {
	c := Content{
		Text:   map[string]string{},
		Assets: map[string]string{},
		Values: values,
	}
	used := map[string]bool{}
	for _, e := range t.Texts {
		if v, ok := values[e.ID]; ok {
			c.Text[e.ID] = v
			used[e.ID] = true
		}
		for _, k := range binding.Keys(e.Content) {
			used[k] = true
		}
	}
	for _, e := range t.Icons {
		if v, ok := values[AssetKey(e.ID)]; ok {
			c.Assets[e.ID] = v
			used[AssetKey(e.ID)] = true
		}
	}
	for _, e := range t.Banners {
		if v, ok := values[AssetKey(e.ID)]; ok {
			c.Assets[e.ID] = v
			used[AssetKey(e.ID)] = true
		}
	}
	var unused []string
	for k := range values {
		if !used[k] {
			unused = append(unused, k)
		}
	}
	sort.Strings(unused)
	return c, unused
}

// text 返回覆盖内容，覆盖值为空时退回声明值。
func (c Content) text(id, fallback string) string {
	if v := c.Text[id]; v != "" {
		return v
	}
	return fallback
}

func (c Content) asset(id, fallback string) string {
	if v := c.Assets[id]; v != "" {
		return v
	}
	return fallback
}
