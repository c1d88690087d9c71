// Package config 加载模板目录：JSON/YAML 文件或 .card DSL 文件。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ByLCY/cardshot/dsl"
	"github.com/ByLCY/cardshot/layout"
)

// ErrTemplateNotFound 表示目录中没有请求的模板 id。
var ErrTemplateNotFound = errors.New("模板不存在")

// SchemaConstraint 是本程序能读取的目录版本范围。
const SchemaConstraint = ">= 1.0.0, < 2.0.0"

// DefaultOutputPattern 是未指定输出文件名时使用的模式。
const DefaultOutputPattern = "generated_t${template}.png"

// Defaults 是目录级别的默认值，模板可以单独覆盖 card_top 与 card_color。
type Defaults struct {
	FontPath           string   `yaml:"font_path"`
	BoldFontPath       string   `yaml:"bold_font_path"`
	OutputDir          string   `yaml:"output_dir"`
	OutputPattern      string   `yaml:"output_pattern"`
	CardTop            int      `yaml:"card_top"`
	CardColor          string   `yaml:"card_color"`
	FallbackBackground string   `yaml:"fallback_background"`
	Dynamic            []string `yaml:"dynamic"`
}

// DefaultDefaults 返回内置默认值。
func DefaultDefaults() Defaults {
	return Defaults{
		OutputDir:          "output",
		OutputPattern:      DefaultOutputPattern,
		CardTop:            layout.DefaultCardTop,
		CardColor:          "#FFFFFF",
		FallbackBackground: "#CCCCCC",
		Dynamic:            append([]string(nil), layout.DefaultDynamic...),
	}
}

// Catalog 是加载后的模板目录，模板按文件中的声明顺序保存。
type Catalog struct {
	Version   *semver.Version
	Defaults  Defaults
	order     []string
	templates map[string]*layout.Template
}

func newCatalog(v *semver.Version, d Defaults) *Catalog {
	return &Catalog{Version: v, Defaults: d, templates: map[string]*layout.Template{}}
}

func (c *Catalog) add(t *layout.Template) error {
	if _, ok := c.templates[t.ID]; ok {
		return fmt.Errorf("模板 %s 重复定义", t.ID)
	}
	c.order = append(c.order, t.ID)
	c.templates[t.ID] = t
	return nil
}

// Template 返回 id 对应的模板，不存在时返回包装了 ErrTemplateNotFound 的错误。
func (c *Catalog) Template(id string) (*layout.Template, error) {
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// IDs 按声明顺序返回全部模板 id。
func (c *Catalog) IDs() []string { return append([]string(nil), c.order...) }

// Load 根据扩展名读取目录文件：.card 走 DSL，其余按 YAML 解析（JSON 是 YAML 的子集）。
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取模板目录失败: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".card") {
		return ParseDSL(string(data))
	}
	return Parse(data)
}

// ParseDSL 解析 .card 源码，目录级默认值取内置值。
func ParseDSL(src string) (*Catalog, error) {
	d := DefaultDefaults()
	color, err := layout.ParseColor(d.CardColor)
	if err != nil {
		return nil, err
	}
	tpls, err := dsl.Build(src, dsl.Defaults{CardTop: d.CardTop, CardColor: color})
	if err != nil {
		return nil, err
	}
	v, _ := checkVersion("")
	c := newCatalog(v, d)
	for _, t := range tpls {
		if err := c.add(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// checkVersion 校验目录版本，缺省视为 1.0.0。
func checkVersion(raw string) (*semver.Version, error) {
	if strings.TrimSpace(raw) == "" {
		raw = "1.0.0"
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("目录版本 %q 无法解析: %w", raw, err)
	}
	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return nil, err
	}
	if !constraint.Check(v) {
		return nil, fmt.Errorf("目录版本 %s 不受支持，要求 %s", v, SchemaConstraint)
	}
	return v, nil
}
