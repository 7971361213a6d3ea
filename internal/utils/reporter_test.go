package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RecoveryAshes/urlrecon/internal/models"
)

func TestReporter_DisplayResults(t *testing.T) {
	t.Run("表格输出", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, true)

		urls := []string{"http://example.com/a/", "http://example.com/b.js"}
		if err := reporter.DisplayResults(urls, "http://example.com/"); err != nil {
			t.Fatalf("DisplayResults失败: %v", err)
		}

		out := buf.String()
		for _, u := range urls {
			if !strings.Contains(out, u) {
				t.Errorf("输出缺少URL %s:\n%s", u, out)
			}
		}
		if !strings.Contains(out, "发现 2 个URL") {
			t.Errorf("输出缺少标题:\n%s", out)
		}
		if strings.Index(out, urls[0]) > strings.Index(out, urls[1]) {
			t.Error("URL应保持输入顺序")
		}
	})

	t.Run("没有结果", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf, true)

		if err := reporter.DisplayResults(nil, "http://example.com/"); err != nil {
			t.Fatalf("DisplayResults失败: %v", err)
		}
		if !strings.Contains(buf.String(), "未在 http://example.com/ 发现任何URL") {
			t.Errorf("空结果提示错误: %q", buf.String())
		}
	})
}

func TestReporter_DisplayFinding(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(&buf, true)

	reporter.DisplayFinding(models.JSFinding{
		URL:     "http://example.com/app.js",
		Matches: []string{"apiKey = ", "token: "},
	})

	expected := "[JS] http://example.com/app.js\n     apiKey = \n     token: \n"
	if buf.String() != expected {
		t.Errorf("DisplayFinding输出 = %q, 期望 %q", buf.String(), expected)
	}
}

func TestReporter_ExportResults(t *testing.T) {
	reporter := NewReporter(&bytes.Buffer{}, true)

	t.Run("去重排序逐行写入", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "urls.txt")
		urls := []string{
			"http://example.com/b",
			"http://example.com/a",
			"http://example.com/b",
		}

		if err := reporter.ExportResults(urls, path); err != nil {
			t.Fatalf("ExportResults失败: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("读取导出文件失败: %v", err)
		}
		expected := "http://example.com/a\nhttp://example.com/b\n"
		if string(data) != expected {
			t.Errorf("导出内容 = %q, 期望 %q", string(data), expected)
		}
	})

	t.Run("空结果写入空文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		if err := reporter.ExportResults(nil, path); err != nil {
			t.Fatalf("ExportResults失败: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("导出文件不存在: %v", err)
		}
		if info.Size() != 0 {
			t.Errorf("空结果文件大小应为0, 得到 %d", info.Size())
		}
	})

	t.Run("写入失败返回错误", func(t *testing.T) {
		// 以已存在的文件作为父目录
		parent := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(parent, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := reporter.ExportResults([]string{"http://example.com/"}, filepath.Join(parent, "urls.txt")); err == nil {
			t.Error("期望写入失败")
		}
	})
}

func TestReporter_GenerateReport(t *testing.T) {
	reporter := NewReporter(&bytes.Buffer{}, true)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &models.CrawlResult{
		Target: models.NewCrawlTarget("http://example.com/"),
		Status: models.TaskStatusCompleted,
		URLs:   []string{"http://example.com/a.js"},
		Stats: models.TaskStats{
			VisitedURLs: 2,
			InScopeURLs: 1,
			Duration:    1.5,
		},
		StartedAt: start,
		EndedAt:   start.Add(1500 * time.Millisecond),
	}
	config := models.DefaultCrawlConfig()
	config.Filter = models.FilterSpec{Extension: "js"}

	path := filepath.Join(t.TempDir(), "report.json")
	if err := reporter.GenerateReport(result, config, path); err != nil {
		t.Fatalf("GenerateReport失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取报告失败: %v", err)
	}

	var report models.CrawlReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("报告不是合法JSON: %v", err)
	}

	if report.RunID == "" {
		t.Error("RunID不应为空")
	}
	if report.Origin != "http://example.com" {
		t.Errorf("Origin = %q", report.Origin)
	}
	if report.Filter.Extension != "js" {
		t.Errorf("Filter.Extension = %q", report.Filter.Extension)
	}
	if len(report.URLs) != 1 || report.URLs[0] != "http://example.com/a.js" {
		t.Errorf("URLs = %v", report.URLs)
	}
	if report.Stats.VisitedURLs != 2 {
		t.Errorf("Stats.VisitedURLs = %d", report.Stats.VisitedURLs)
	}
}
