package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/cardshot/layout"
)

// Defaults supplies template-level values a .card file may omit.
type Defaults struct {
	CardTop   int
	CardColor layout.Color
}

// Build parses src and converts every template declaration into a validated layout.Template.
func Build(src string, d Defaults) ([]*layout.Template, error) {
	file, err := ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse .card: %w", err)
	}
	out := make([]*layout.Template, 0, len(file.Templates))
	for _, decl := range file.Templates {
		t, err := convertTemplate(decl, d)
		if err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func convertTemplate(decl *TemplateDecl, d Defaults) (*layout.Template, error) {
	t := &layout.Template{
		ID:         decl.ID,
		CardTop:    d.CardTop,
		CardColor:  d.CardColor,
		Background: layout.Background{Color: layout.Black},
	}
	for _, st := range decl.Block.Statements {
		if st.Text != nil {
			return nil, fmt.Errorf("template %s: unexpected text literal %q", decl.ID, string(st.Text.Value))
		}
		cmd := st.Command
		a := &args{cmd: cmd}
		var err error
		switch cmd.Name {
		case "canvas":
			var w, h int
			if w, err = a.number(); err == nil {
				h, err = a.number()
			}
			t.Canvas = layout.Size{W: w, H: h}
		case "background":
			t.Background, err = a.background()
		case "card-top":
			t.CardTop, err = a.number()
		case "card-color":
			t.CardColor, err = a.color()
		case "rect", "icon", "banner", "text":
			err = addElement(t, cmd, a)
		default:
			err = fmt.Errorf("unknown command %q", cmd.Name)
		}
		if err == nil {
			err = a.done()
		}
		if err != nil {
			return nil, fmt.Errorf("%s: template %s: %w", position(cmd.Pos), decl.ID, err)
		}
	}
	return t, nil
}

// attrs collects every attribute an element command may carry.
type attrs struct {
	pos         *layout.Point
	size        *layout.Size
	color       *layout.Color
	radius      int
	rounded     bool
	path        string
	fontSize    int
	bold        bool
	fontPath    string
	maxWidth    int
	lineSpacing *int
	dynamic     *bool
	content     string
	rel         layout.Relations
}

var allowed = map[string]map[string]bool{
	"rect":   set("at", "size", "color", "radius", "right-of", "align-y"),
	"icon":   set("at", "size", "path", "rounded", "right-of", "align-y"),
	"banner": set("at", "size", "path", "radius", "right-of", "align-y"),
	"text": set("at", "font", "bold", "font-path", "color", "max-width", "line-spacing",
		"content", "dynamic", "static", "center", "center-on", "right-of", "align-y"),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func addElement(t *layout.Template, cmd *Command, a *args) error {
	// rect ids are optional; every other element needs one.
	var id string
	if next, ok := a.peek(); ok && (next.Type == "String" || next.Type == "Ident" && !allowed[cmd.Name][next.Value]) {
		a.i++
		id = next.Value
	}
	if id == "" && cmd.Name != "rect" {
		return fmt.Errorf("%s requires an id", cmd.Name)
	}

	var at attrs
	for !a.empty() {
		key, _ := a.peek()
		if key.Type != "Ident" || !allowed[cmd.Name][key.Value] {
			return fmt.Errorf("%s %s: unexpected %q", cmd.Name, id, key.Raw)
		}
		a.i++
		if err := at.read(key.Value, a); err != nil {
			return fmt.Errorf("%s %s: %s: %w", cmd.Name, id, key.Value, err)
		}
	}
	if cmd.Block != nil {
		if cmd.Name != "text" {
			return fmt.Errorf("%s %s: only text accepts a content block", cmd.Name, id)
		}
		var parts []string
		for _, st := range cmd.Block.Statements {
			if st.Text == nil {
				return fmt.Errorf("text %s: content block may only hold strings", id)
			}
			parts = append(parts, string(st.Text.Value))
		}
		at.content = strings.Join(parts, " ")
	}

	switch cmd.Name {
	case "rect":
		color := layout.White
		if at.color != nil {
			color = *at.color
		}
		t.Rectangles = append(t.Rectangles, layout.Rectangle{
			ID: id, Pos: at.pos, Size: at.size, Color: color, Radius: at.radius, Rel: at.rel,
		})
	case "icon":
		t.Icons = append(t.Icons, layout.Icon{
			ID: id, Pos: at.pos, Size: at.size, Path: at.path, Rounded: at.rounded, Rel: at.rel,
		})
	case "banner":
		t.Banners = append(t.Banners, layout.Banner{
			ID: id, Pos: at.pos, Size: at.size, Path: at.path, Radius: at.radius, Rel: at.rel,
		})
	case "text":
		color := layout.Black
		if at.color != nil {
			color = *at.color
		}
		t.Texts = append(t.Texts, layout.Text{
			ID:          id,
			Pos:         at.pos,
			FontSize:    at.fontSize,
			Bold:        at.bold,
			FontPath:    at.fontPath,
			Color:       color,
			MaxWidth:    at.maxWidth,
			LineSpacing: at.lineSpacing,
			Content:     at.content,
			Dynamic:     at.dynamic,
			Rel:         at.rel,
		})
	}
	return nil
}

func (at *attrs) read(key string, a *args) error {
	var err error
	switch key {
	case "at":
		var p layout.Point
		if p.X, err = a.number(); err == nil {
			p.Y, err = a.number()
		}
		at.pos = &p
	case "size":
		var s layout.Size
		if s.W, err = a.number(); err == nil {
			s.H, err = a.number()
		}
		at.size = &s
	case "color":
		var c layout.Color
		c, err = a.color()
		at.color = &c
	case "radius":
		at.radius, err = a.number()
	case "rounded":
		at.rounded = true
	case "path":
		at.path, err = a.str()
	case "font":
		at.fontSize, err = a.number()
	case "bold":
		at.bold = true
	case "font-path":
		at.fontPath, err = a.str()
	case "max-width":
		at.maxWidth, err = a.number()
	case "line-spacing":
		var n int
		n, err = a.number()
		at.lineSpacing = &n
	case "content":
		at.content, err = a.str()
	case "dynamic", "static":
		v := key == "dynamic"
		at.dynamic = &v
	case "center":
		at.rel.Center = true
	case "center-on":
		var s layout.Span
		if s.X, err = a.number(); err == nil {
			s.W, err = a.number()
		}
		at.rel.CenterOnX = &s
	case "right-of":
		at.rel.RelativeToX, err = a.ident()
		if next, ok := a.peek(); ok && next.Type == "Number" && err == nil {
			var n int
			n, err = a.number()
			at.rel.Spacing = &n
		}
	case "align-y":
		at.rel.AlignYTo, err = a.ident()
	}
	return err
}

// args walks the loose arguments of one command.
type args struct {
	cmd *Command
	i   int
}

func (a *args) empty() bool { return a.i >= len(a.cmd.Args) }

func (a *args) peek() (*Lexeme, bool) {
	if a.empty() {
		return nil, false
	}
	return a.cmd.Args[a.i], true
}

func (a *args) next(what string) (*Lexeme, error) {
	l, ok := a.peek()
	if !ok {
		return nil, fmt.Errorf("missing %s", what)
	}
	a.i++
	return l, nil
}

func (a *args) number() (int, error) {
	l, err := a.next("number")
	if err != nil {
		return 0, err
	}
	if l.Type != "Number" {
		return 0, fmt.Errorf("%s: expected number, got %q", position(l.Pos), l.Raw)
	}
	return strconv.Atoi(strings.TrimSuffix(l.Value, "px"))
}

func (a *args) str() (string, error) {
	l, err := a.next("string")
	if err != nil {
		return "", err
	}
	if l.Type != "String" {
		return "", fmt.Errorf("%s: expected string, got %q", position(l.Pos), l.Raw)
	}
	return l.Value, nil
}

func (a *args) ident() (string, error) {
	l, err := a.next("element id")
	if err != nil {
		return "", err
	}
	if l.Type != "Ident" && l.Type != "String" {
		return "", fmt.Errorf("%s: expected element id, got %q", position(l.Pos), l.Raw)
	}
	return l.Value, nil
}

func (a *args) color() (layout.Color, error) {
	l, err := a.next("color")
	if err != nil {
		return layout.Color{}, err
	}
	if l.Type != "Color" && l.Type != "Ident" {
		return layout.Color{}, fmt.Errorf("%s: expected color, got %q", position(l.Pos), l.Raw)
	}
	return layout.ParseColor(l.Value)
}

// background accepts a color or a quoted image path.
func (a *args) background() (layout.Background, error) {
	l, ok := a.peek()
	if ok && l.Type == "String" {
		a.i++
		return layout.Background{Color: layout.Black, Path: l.Value}, nil
	}
	c, err := a.color()
	return layout.Background{Color: c}, err
}

func (a *args) done() error {
	if l, ok := a.peek(); ok {
		return fmt.Errorf("%s: unexpected %q", position(l.Pos), l.Raw)
	}
	return nil
}

func position(p lexer.Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
