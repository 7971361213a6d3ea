package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/urlrecon/internal/config"
	"github.com/RecoveryAshes/urlrecon/internal/core"
	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers          []string
	headerConfigFile string

	// 爬取参数
	depth      int
	extension  string
	match      string
	outputFile string
	jsonReport string
	analyzeJS  bool
)

// appConfig 在PersistentPreRunE中加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "urlrecon <target>",
	Short: "同源URL递归爬取与JS敏感关键字扫描工具",
	Long: `urlrecon - 有界深度的同源URL爬取工具

从目标页面提取链接,只保留与目标同源的URL,并对目录型链接(以"/"结尾)继续递归:
  • 扩展名过滤 (--ext) 和子串过滤 (--match)
  • 结果表格输出,可导出为文本 (--out) 或JSON报告 (--json)
  • 扩展名为js时可扫描JS中的敏感关键字 (--analyze-js)
  • 自定义HTTP请求头

示例:
  urlrecon https://example.com
  urlrecon https://example.com -d 2 -m admin -o urls.txt
  urlrecon https://example.com -e js --analyze-js
  urlrecon https://example.com -H "Cookie: session=xxxx"

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig = cfg

		logConfig := utils.LogConfig{
			Level:      cfg.Logging.Level,
			LogDir:     cfg.Logging.LogDir,
			MaxSize:    cfg.Logging.Rotation.MaxSize,
			MaxBackups: cfg.Logging.Rotation.MaxBackups,
			MaxAge:     cfg.Logging.Rotation.MaxAge,
			Compress:   cfg.Logging.Rotation.Compress,
			NoColor:    cfg.Output.NoColor,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Debug("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		targetURL := args[0]

		if !cmd.Flags().Changed("depth") {
			depth = appConfig.Crawl.Depth
		}
		if err := ValidateFlags(targetURL, depth); err != nil {
			return err
		}

		// Ctrl+C 取消爬取,已收集的结果照常输出
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if headerConfigFile == "" {
			headerConfigFile = appConfig.Headers.ConfigFile
		}
		headerManager, err := core.NewHeaderManager(headerConfigFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}
		if err := headerManager.LoadConfig(); err != nil {
			return fmt.Errorf("加载HTTP头部配置失败: %w", err)
		}
		if err := headerManager.Validate(); err != nil {
			return fmt.Errorf("HTTP头部验证失败: %w", err)
		}
		utils.Debugf("当前有效的HTTP头部: %v", headerManager.GetSafeHeaders())

		crawlConfig := appConfig.MergeCLIFlags(depth, extension, match, analyzeJS)

		crawler, err := core.NewCrawler(targetURL, crawlConfig, headerManager)
		if err != nil {
			return fmt.Errorf("创建爬取器失败: %w", err)
		}

		reporter := utils.NewReporter(os.Stdout, appConfig.Output.NoColor)
		crawler.SetFindingHandler(reporter.DisplayFinding)
		crawler.SetShowProgress(appConfig.Output.ShowProgress)

		result, err := crawler.Crawl(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				return fmt.Errorf("爬取失败: %w", err)
			}
			utils.Warn("⚠️  爬取已被中断,输出已收集的部分结果")
		}

		if err := reporter.DisplayResults(result.URLs, targetURL); err != nil {
			utils.Warnf("输出结果失败: %v", err)
		}

		// 写入失败只警告,不影响退出码
		if outputFile != "" {
			_ = reporter.ExportResults(result.URLs, outputFile)
		}
		if jsonReport != "" {
			_ = reporter.GenerateReport(result, crawlConfig, jsonReport)
		}

		printStats(result.Stats)
		utils.Info("✨ 爬取任务完成!")
		return nil
	},
}

// printStats 输出统计信息到stderr,stdout只保留结果
func printStats(stats models.TaskStats) {
	fmt.Fprintln(os.Stderr, "\n==================================================")
	fmt.Fprintln(os.Stderr, "📊 爬取统计")
	fmt.Fprintln(os.Stderr, "==================================================")
	fmt.Fprintf(os.Stderr, "✅ 抓取页面数: %d\n", stats.VisitedURLs)
	fmt.Fprintf(os.Stderr, "❌ 抓取失败数: %d\n", stats.FailedFetches)
	fmt.Fprintf(os.Stderr, "🔗 候选URL数: %d\n", stats.CandidateURLs)
	fmt.Fprintf(os.Stderr, "🎯 结果URL数: %d\n", stats.InScopeURLs)
	fmt.Fprintf(os.Stderr, "📏 最大深度: %d\n", stats.MaxDepthReached)
	if stats.AnalyzedScripts > 0 {
		fmt.Fprintf(os.Stderr, "🔎 JS分析: %d 个文件, %d 个命中\n", stats.AnalyzedScripts, stats.JSFindings)
	}
	fmt.Fprintf(os.Stderr, "⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Fprintln(os.Stderr, "==================================================")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	// version不需要加载配置和日志
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("urlrecon %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

var forceInitHeaders bool

var initHeadersCmd = &cobra.Command{
	Use:   "init-headers [path]",
	Short: "生成HTTP头部配置模板 (默认 configs/headers.yaml)",
	Long: `生成HTTP头部配置模板

爬取时如果头部配置文件不存在,直接使用内置模板,不会写入磁盘。
需要持久化自定义头部时,用这个命令生成模板后再编辑。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteTemplate(path, forceInitHeaders); err != nil {
			return err
		}
		utils.Infof("✅ 已生成头部配置模板: %s", path)
		return nil
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().StringVar(&headerConfigFile, "header-config", "", "HTTP头部配置文件 (默认 configs/headers.yaml)")

	// 爬取参数
	rootCmd.Flags().IntVarP(&depth, "depth", "d", 1, "最大递归深度 (>= 0)")
	rootCmd.Flags().StringVarP(&extension, "ext", "e", "", "只保留指定扩展名的URL (如 js, php)")
	rootCmd.Flags().StringVarP(&match, "match", "m", "", "只保留包含指定子串的URL (不区分大小写)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "导出结果到文本文件,每行一个URL")
	rootCmd.Flags().StringVar(&jsonReport, "json", "", "导出JSON运行报告")
	rootCmd.Flags().BoolVar(&analyzeJS, "analyze-js", false, "扫描JS文件中的敏感关键字 (需配合 --ext js)")

	initHeadersCmd.Flags().BoolVarP(&forceInitHeaders, "force", "f", false, "覆盖已存在的文件")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initHeadersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
