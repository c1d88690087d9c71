package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ByLCY/cardshot/config"
	"github.com/ByLCY/cardshot/content"
	"github.com/ByLCY/cardshot/generator"
	"github.com/ByLCY/cardshot/layout"
)

func main() {
	configPath := flag.String("config", "config/templates.json", "模板目录文件（.json/.yaml/.card）")
	baseDir := flag.String("base", ".", "相对资源与字体路径的根目录")
	templateID := flag.String("template", "", "模板 ID")
	dateTime := flag.String("datetime", "", "日期时间，例如 \"Tue, Jan 15, 01:50\"")
	title := flag.String("title", "", "通知标题")
	description := flag.String("description", "", "通知描述")
	app := flag.String("app", "", "应用名")
	icon := flag.String("icon", "", "图标图片路径")
	banner := flag.String("banner", "", "横幅图片路径")
	output := flag.String("out", "", "输出文件名，默认 generated_t<模板>.png")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	layout.SetLogger(logger)

	inv, err := invocation(flag.Args(), content.Invocation{
		TemplateID:  *templateID,
		DateTime:    *dateTime,
		Title:       *title,
		Description: *description,
		AppName:     *app,
		IconPath:    *icon,
		BannerPath:  *banner,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(1)
	}
	inv.Output = *output

	cat, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载模板目录失败: %v", err)
	}
	report, err := generator.Generate(cat, inv, generator.Options{
		BaseDir:   *baseDir,
		DebugPath: *debug,
		Logger:    logger,
	})
	if errors.Is(err, config.ErrTemplateNotFound) {
		log.Fatalf("错误: 模板 %s 不存在", inv.TemplateID)
	}
	if err != nil {
		log.Fatalf("生成图片失败: %v", err)
	}
	fmt.Printf("已生成图片：%s\n", report.Output)
}

// invocation 优先使用 7 个位置参数，否则使用命令行标志。
func invocation(args []string, flags content.Invocation) (content.Invocation, error) {
	if len(args) > 0 {
		return content.FromArgs(args)
	}
	return flags, flags.Validate()
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "用法: cardshot [flags] <模板ID> <日期时间> <标题> <描述> <应用名> <图标> <横幅>")
	fmt.Fprintln(out, "   或: cardshot -template 1 -datetime ... -title ... -description ... -app ... -icon ... -banner ...")
	flag.PrintDefaults()
}
