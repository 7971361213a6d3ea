package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
)

// Reporter 结果输出: 终端表格、文本导出、JSON报告
type Reporter struct {
	out     io.Writer
	noColor bool
}

// NewReporter 创建报告生成器,out为nil时输出到stdout
func NewReporter(out io.Writer, noColor bool) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{
		out:     out,
		noColor: noColor,
	}
}

// DisplayResults 以表格形式输出URL列表
func (r *Reporter) DisplayResults(urls []string, target string) error {
	title := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	if r.noColor {
		title.DisableColor()
		warn.DisableColor()
	}

	if len(urls) == 0 {
		warn.Fprintf(r.out, "[!] 未在 %s 发现任何URL\n", target)
		return nil
	}

	title.Fprintf(r.out, "[+] %s 发现 %d 个URL\n", target, len(urls))

	table := tablewriter.NewWriter(r.out)
	table.Header("#", "URL")
	for i, u := range urls {
		if err := table.Append([]string{strconv.Itoa(i + 1), u}); err != nil {
			return fmt.Errorf("生成结果表格失败: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("输出结果表格失败: %w", err)
	}
	return nil
}

// DisplayFinding 输出一条JS关键字命中结果
func (r *Reporter) DisplayFinding(finding models.JSFinding) {
	label := color.New(color.FgRed, color.Bold)
	if r.noColor {
		label.DisableColor()
	}
	label.Fprint(r.out, "[JS] ")
	fmt.Fprintf(r.out, "%s\n", finding.URL)
	for _, match := range finding.Matches {
		fmt.Fprintf(r.out, "     %s\n", match)
	}
}

// ExportResults 将URL去重排序后逐行写入文件
// 写入失败只记录警告,错误返回给调用方
func (r *Reporter) ExportResults(urls []string, path string) error {
	lines := UniqueSorted(urls)
	if err := WriteLines(path, lines); err != nil {
		Logger.Warn().Err(err).Str("path", path).Msg("⚠️  导出结果失败")
		return err
	}
	Infof("💾 已导出 %d 个URL到 %s", len(lines), path)
	return nil
}

// GenerateReport 生成JSON运行报告
func (r *Reporter) GenerateReport(result *models.CrawlResult, config models.CrawlConfig, path string) error {
	report := models.NewCrawlReport(result, config)

	data, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := WriteLines(path, []string{string(data)}); err != nil {
		Logger.Warn().Err(err).Str("path", path).Msg("⚠️  写入报告失败")
		return err
	}

	Infof("✅ 报告已生成: %s (run_id=%s)", path, report.RunID)
	return nil
}

// NewProgressBar 创建进度条,输出到stderr
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
