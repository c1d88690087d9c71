package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/cardshot/config"
	"github.com/ByLCY/cardshot/content"
	"github.com/ByLCY/cardshot/fonts"
	"github.com/ByLCY/cardshot/layout"
)

const miniCard = `template mini {
  canvas 120 240
  background #202124
  rect card at 10 175 size 100 40 radius 6
  icon icon at 20 185 size 16 16 rounded
  text app_name at 0 185 font 10 color #5F6368 right-of icon 4 align-y icon
  text title at 20 205 font 12 bold max-width 80
}`

type stubRenderer struct {
	err      error
	rendered int
}

func (s *stubRenderer) Measure(c string, f layout.FontResource) (layout.Extent, error) {
	return layout.Extent{Width: len([]rune(c)) * f.Size / 2, Height: f.Size}, nil
}

func (s *stubRenderer) Render(*layout.Result) ([]byte, error) {
	s.rendered++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png-bytes"), nil
}

func catalog(t *testing.T, outDir string) *config.Catalog {
	t.Helper()
	cat, err := config.ParseDSL(miniCard)
	if err != nil {
		t.Fatalf("ParseDSL error: %v", err)
	}
	cat.Defaults.OutputDir = outDir
	return cat
}

func invocation(id string) content.Invocation {
	return content.Invocation{
		TemplateID:  id,
		DateTime:    "Tue, Jan 15, 01:50",
		Title:       "New Delhi World Book Fair 2026 - A Celebration of Literature",
		Description: "Bharat Mandampam | Jan 10-18",
		AppName:     "iZooto Demo App",
		IconPath:    "assets/icons/bell-icon.png",
		BannerPath:  "assets/banners/fair.jpg",
	}
}

func TestGenerateUnknownTemplateWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	stub := &stubRenderer{}
	_, err := Generate(catalog(t, out), invocation("9"), Options{Renderer: stub})
	if !errors.Is(err, config.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if stub.rendered != 0 {
		t.Fatalf("renderer should not run")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output dir should not be created, stat err=%v", err)
	}
}

func TestGenerateUsageErrorBeforeWork(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	inv := invocation("mini")
	inv.AppName = ""
	stub := &stubRenderer{}
	if _, err := Generate(catalog(t, out), inv, Options{Renderer: stub}); !errors.Is(err, content.ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if stub.rendered != 0 {
		t.Fatalf("renderer should not run")
	}
}

func TestGenerateRenderFailureWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	stub := &stubRenderer{err: errors.New("boom")}
	if _, err := Generate(catalog(t, out), invocation("mini"), Options{Renderer: stub}); err == nil {
		t.Fatalf("expected render error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output dir should not be created, stat err=%v", err)
	}
}

func TestGenerateWithStubRenderer(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	debug := filepath.Join(dir, "debug", "layout.json")
	report, err := Generate(catalog(t, out), invocation("mini"), Options{Renderer: &stubRenderer{}, DebugPath: debug})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	want := filepath.Join(out, "generated_tmini.png")
	if report.Output != want {
		t.Fatalf("output = %s, want %s", report.Output, want)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("unexpected output file: %q err=%v", data, err)
	}
	sum := sha256.Sum256(data)
	if report.SHA256 != hex.EncodeToString(sum[:]) || report.Bytes != len(data) {
		t.Fatalf("unexpected report: %+v", report)
	}
	// 标题 "New Delhi ... Literature" 在 80px 内折成多行，推动卡片增高。
	if report.Shift <= 0 || report.ContentBottom <= 215 {
		t.Fatalf("expected cascade, got shift=%d bottom=%d", report.Shift, report.ContentBottom)
	}
	if _, err := os.Stat(debug); err != nil {
		t.Fatalf("debug JSON missing: %v", err)
	}
	for _, k := range report.Unused {
		if k == content.KeyTemplate || k == content.KeyTitle || k == content.KeyIconPath {
			t.Fatalf("key %s should count as used: %v", k, report.Unused)
		}
	}
}

func TestGenerateWithCanvasRenderer(t *testing.T) {
	dir := t.TempDir()
	inv := invocation("mini")
	inv.Output = "card.png"
	report, err := Generate(catalog(t, filepath.Join(dir, "out")), inv, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	info, err := os.Stat(report.Output)
	if err != nil || info.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	d := config.DefaultDefaults()
	values := map[string]string{"template": "3"}
	if got := OutputPath(d, "", values); got != filepath.Join("output", "generated_t3.png") {
		t.Fatalf("default output = %s", got)
	}
	if got := OutputPath(d, "custom.png", values); got != filepath.Join("output", "custom.png") {
		t.Fatalf("named output = %s", got)
	}
	abs := filepath.Join(t.TempDir(), "x.png")
	if got := OutputPath(d, abs, values); got != abs {
		t.Fatalf("absolute output = %s", got)
	}
	d.OutputPattern = "${app_name|card}-${template}.png"
	if got := OutputPath(d, "", values); got != filepath.Join("output", "card-3.png") {
		t.Fatalf("pattern output = %s", got)
	}
}

func TestFontDefaults(t *testing.T) {
	f := FontDefaults(config.DefaultDefaults())
	if f.Regular != fonts.Regular || f.Bold != fonts.Bold {
		t.Fatalf("unexpected built-in defaults: %+v", f)
	}
	f = FontDefaults(config.Defaults{FontPath: "a.ttf", BoldFontPath: "b.ttf"})
	if f.Regular != "a.ttf" || f.Bold != "b.ttf" {
		t.Fatalf("unexpected configured defaults: %+v", f)
	}
}
