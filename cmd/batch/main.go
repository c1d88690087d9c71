// Command batch 用同一份示例内容渲染目录中的多个模板，可选记录到 SQLite 并监听目录变化。
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/cardshot/config"
	"github.com/ByLCY/cardshot/content"
	"github.com/ByLCY/cardshot/generator"
	"github.com/ByLCY/cardshot/layout"
	"github.com/ByLCY/cardshot/store"
)

// sample 是批量渲染使用的示例通知。
var sample = content.Invocation{
	DateTime:    "Tue, Jan 15, 01:50",
	Title:       "New Delhi World Book Fair 2026 - A Celebration of Literature, Culture, and History across the Ages",
	Description: "Bharat Mandampam | Jan 10-18 | Entry Free | Theme: valour & Wisdom",
	AppName:     "iZooto Demo App",
	IconPath:    "assets/icons/bell-icon.png",
	BannerPath:  "assets/banners/World-Book-Fair-2026-1536x1536-1.jpg",
}

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
)

type batchConfig struct {
	ConfigPath string
	BaseDir    string
	Templates  []string
	Parallel   int
	DBPath     string
	Logger     *slog.Logger
}

// outcome 是单个模板的渲染结果，Err 非空时 Report 为空。
type outcome struct {
	TemplateID string
	Report     *generator.Report
	Err        error
}

func main() {
	configPath := flag.String("config", "config/templates.json", "模板目录文件（.json/.yaml/.card）")
	baseDir := flag.String("base", ".", "相对资源与字体路径的根目录")
	templates := flag.String("templates", "", "逗号分隔的模板 ID，默认渲染目录中的全部模板")
	parallel := flag.Int("parallel", 4, "并发渲染数")
	dbPath := flag.String("db", "", "渲染记录 SQLite 路径，为空时不记录")
	watch := flag.Bool("watch", false, "模板目录文件变化时重新渲染")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	layout.SetLogger(logger)

	cfg := batchConfig{
		ConfigPath: *configPath,
		BaseDir:    *baseDir,
		Templates:  splitIDs(*templates),
		Parallel:   *parallel,
		DBPath:     *dbPath,
		Logger:     logger,
	}

	failed, err := runOnce(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("批量渲染失败: %v", err)
	}
	if !*watch {
		if failed > 0 {
			os.Exit(1)
		}
		return
	}
	if err := watchCatalog(cfg, os.Stdout); err != nil {
		log.Fatalf("监听模板目录失败: %v", err)
	}
}

// runOnce 加载目录并渲染一轮，返回失败的模板数。单个模板失败不影响其他模板。
func runOnce(cfg batchConfig, out io.Writer) (int, error) {
	cat, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return 0, err
	}
	ids := cfg.Templates
	if len(ids) == 0 {
		ids = cat.IDs()
	}

	r, err := generator.NewRenderer(cat.Defaults, cfg.BaseDir, cfg.Logger)
	if err != nil {
		return 0, err
	}

	results := make([]outcome, len(ids))
	var g errgroup.Group
	g.SetLimit(max(cfg.Parallel, 1))
	for i, id := range ids {
		g.Go(func() error {
			inv := sample
			inv.TemplateID = id
			report, err := generator.Generate(cat, inv, generator.Options{
				BaseDir:  cfg.BaseDir,
				Renderer: r,
				Logger:   cfg.Logger,
			})
			results[i] = outcome{TemplateID: id, Report: report, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if cfg.DBPath != "" {
		if err := record(cfg.DBPath, results); err != nil {
			return 0, err
		}
	}

	failed := 0
	for _, o := range results {
		if o.Err != nil {
			failed++
		}
	}
	printSummary(out, results)
	return failed, nil
}

// record 在全部渲染结束后顺序写入，避免并发写 SQLite。
func record(dbPath string, results []outcome) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, o := range results {
		rec := store.RenderRecord{Timestamp: time.Now(), TemplateID: o.TemplateID}
		if o.Err != nil {
			rec.Error = o.Err.Error()
		} else {
			rec.Output = o.Report.Output
			rec.Bytes = o.Report.Bytes
			rec.Shift = o.Report.Shift
			rec.ContentBottom = o.Report.ContentBottom
			rec.SHA256 = o.Report.SHA256
			rec.Duration = o.Report.Duration
		}
		if _, err := db.SaveRender(rec); err != nil {
			return fmt.Errorf("写入渲染记录失败: %w", err)
		}
	}
	return nil
}

func printSummary(out io.Writer, results []outcome) {
	idWidth := runewidth.StringWidth("模板")
	for _, o := range results {
		idWidth = max(idWidth, runewidth.StringWidth(o.TemplateID))
	}

	fmt.Fprintln(out, headStyle.Render(runewidth.FillRight("模板", idWidth)+"  状态  结果"))
	for _, o := range results {
		id := runewidth.FillRight(o.TemplateID, idWidth)
		if o.Err != nil {
			msg := o.Err.Error()
			if errors.Is(o.Err, config.ErrTemplateNotFound) {
				msg = fmt.Sprintf("模板 %s 不存在", o.TemplateID)
			}
			fmt.Fprintf(out, "%s  %s  %s\n", id, failStyle.Render("❌"), msg)
			continue
		}
		detail := mutedStyle.Render(fmt.Sprintf("shift=%d %s", o.Report.Shift, o.Report.Duration.Round(time.Millisecond)))
		fmt.Fprintf(out, "%s  %s  %s %s\n", id, okStyle.Render("✅"), o.Report.Output, detail)
	}
}

// watchCatalog 监听目录文件所在的目录，目录文件被写入或重新创建时重跑一轮。
func watchCatalog(cfg batchConfig, out io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(cfg.ConfigPath)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	cfg.Logger.Info("监听模板目录", slog.String("path", target))

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := runOnce(cfg, out); err != nil {
				cfg.Logger.Error("重新渲染失败", slog.Any("err", err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			cfg.Logger.Warn("监听错误", slog.Any("err", err))
		}
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
