// Package content 定义一次渲染的调用参数与内容包。
package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrUsage 表示调用参数不完整，应在任何渲染工作开始之前返回。
var ErrUsage = errors.New("用法错误")

// 内容包中可用的键。
const (
	KeyTemplate     = "template"
	KeyAppName      = "app_name"
	KeyTitle        = "title"
	KeyDescription  = "description"
	KeyDateTime     = "date_time"
	KeyDisplayDate  = "display_date"
	KeyDisplayClock = "display_clock"
	KeyIconPath     = "icon_path"
	KeyBannerPath   = "banner_path"
)

var knownKeys = map[string]bool{
	KeyTemplate:     true,
	KeyAppName:      true,
	KeyTitle:        true,
	KeyDescription:  true,
	KeyDateTime:     true,
	KeyDisplayDate:  true,
	KeyDisplayClock: true,
	KeyIconPath:     true,
	KeyBannerPath:   true,
}

// Invocation 是一次渲染的全部外部输入，七个值都必须提供。
type Invocation struct {
	TemplateID  string
	DateTime    string
	Title       string
	Description string
	AppName     string
	IconPath    string
	BannerPath  string
	// Output 为输出文件路径，为空时由调用方按默认规则生成。
	Output string
}

// Validate 检查必填参数，缺失时返回包装了 ErrUsage 的错误。
func (inv Invocation) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"template", inv.TemplateID},
		{"datetime", inv.DateTime},
		{"title", inv.Title},
		{"description", inv.Description},
		{"app", inv.AppName},
		{"icon", inv.IconPath},
		{"banner", inv.BannerPath},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: 缺少参数 %s", ErrUsage, strings.Join(missing, ", "))
	}
	return nil
}

// FromArgs 按位置参数构造调用：模板 ID、日期时间、标题、描述、应用名、图标、横幅。
func FromArgs(args []string) (Invocation, error) {
	if len(args) < 7 {
		return Invocation{}, fmt.Errorf("%w: 需要 7 个位置参数，实际 %d 个", ErrUsage, len(args))
	}
	inv := Invocation{
		TemplateID:  args[0],
		DateTime:    args[1],
		Title:       args[2],
		Description: args[3],
		AppName:     args[4],
		IconPath:    args[5],
		BannerPath:  args[6],
	}
	return inv, inv.Validate()
}

// SplitDateTime 把 "Tue, Jan 15, 01:50" 拆为日期 "Tue, Jan 15" 与时刻 "01:50"。
// 优先按最后一个逗号拆分，否则按最后一个空格，都没有时整体作为日期。
func SplitDateTime(s string) (date, clock string) {
	if i := strings.LastIndex(s, ","); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	if i := strings.LastIndex(s, " "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// Bundle 是按键索引的渲染内容，只接受已知键，值统一为 NFC 形式。
type Bundle struct {
	values map[string]string
}

// NewBundle 根据调用参数构造内容包，并派生 display_date 与 display_clock。
func NewBundle(inv Invocation) Bundle {
	b := Bundle{values: make(map[string]string, len(knownKeys))}
	date, clock := SplitDateTime(inv.DateTime)
	for k, v := range map[string]string{
		KeyTemplate:     inv.TemplateID,
		KeyAppName:      inv.AppName,
		KeyTitle:        inv.Title,
		KeyDescription:  inv.Description,
		KeyDateTime:     inv.DateTime,
		KeyDisplayDate:  date,
		KeyDisplayClock: clock,
		KeyIconPath:     inv.IconPath,
		KeyBannerPath:   inv.BannerPath,
	} {
		b.values[k] = norm.NFC.String(v)
	}
	return b
}

// Set 覆盖单个键的取值，未知键返回错误。
func (b Bundle) Set(key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("未知的内容键 %q", key)
	}
	b.values[key] = norm.NFC.String(value)
	return nil
}

// Get 返回键对应的值。
func (b Bundle) Get(key string) string { return b.values[key] }

// Values 返回内容包的副本，供布局绑定与文件名插值使用。
func (b Bundle) Values() map[string]string {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Keys 返回已知键的有序列表。
func Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
