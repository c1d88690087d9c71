package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${key} 替换为 values 中的值。
// key 不存在时保留原占位符；${key|default} 在取值为空时使用 default。
func Interpolate(text string, values map[string]string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		key, def, hasDefault := strings.Cut(groups[1], "|")
		key = strings.TrimSpace(key)
		if key == "" {
			return match
		}
		val, ok := values[key]
		if ok && val != "" {
			return val
		}
		if hasDefault {
			return strings.TrimSpace(def)
		}
		if ok {
			return val
		}
		return match
	})
}

// Keys 返回文本中引用到的全部 key（按出现顺序，去重）。
func Keys(text string) []string {
	var keys []string
	seen := map[string]bool{}
	for _, groups := range exprPattern.FindAllStringSubmatch(text, -1) {
		key, _, _ := strings.Cut(groups[1], "|")
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}
