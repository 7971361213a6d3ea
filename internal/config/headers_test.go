package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/urlrecon/internal/models"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入测试配置失败: %v", err)
	}
	return path
}

func TestNewHeaderConfigLoader_DefaultPath(t *testing.T) {
	if got := NewHeaderConfigLoader("").Path(); got != DefaultConfigFile {
		t.Errorf("Path() = %q, 期望 %q", got, DefaultConfigFile)
	}
}

func TestHeaderConfigLoader_Load(t *testing.T) {
	t.Run("文件不存在时使用内置模板且不落盘", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "configs", "headers.yaml")

		cfg, err := NewHeaderConfigLoader(path).Load()
		if err != nil {
			t.Fatalf("加载失败: %v", err)
		}
		if cfg.Headers == nil || len(cfg.Headers) != 0 {
			t.Errorf("内置模板应该得到空的Headers, 得到 %v", cfg.Headers)
		}

		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("不应生成配置文件: %v", err)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("目录中不应出现新文件: %v", entries)
		}
	})

	t.Run("读取已有配置", func(t *testing.T) {
		path := writeFile(t, `headers:
  Cookie: "session=abc"
  X-Forwarded-For: "127.0.0.1"
`)

		cfg, err := NewHeaderConfigLoader(path).Load()
		if err != nil {
			t.Fatalf("加载失败: %v", err)
		}
		// viper会将键名转换为小写
		if cfg.Headers["cookie"] != "session=abc" {
			t.Errorf("cookie = %q", cfg.Headers["cookie"])
		}
		if cfg.Headers["x-forwarded-for"] != "127.0.0.1" {
			t.Errorf("x-forwarded-for = %q", cfg.Headers["x-forwarded-for"])
		}
	})

	t.Run("YAML格式错误返回ConfigError", func(t *testing.T) {
		path := writeFile(t, "headers:\n  Cookie: \"unterminated\n  X: y\n")

		_, err := NewHeaderConfigLoader(path).Load()
		var ce *models.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("期望ConfigError, 得到: %v", err)
		}
		if ce.FilePath != path {
			t.Errorf("FilePath = %q, 期望 %q", ce.FilePath, path)
		}
	})

	t.Run("headers不是映射", func(t *testing.T) {
		path := writeFile(t, "headers: [a, b]\n")

		_, err := NewHeaderConfigLoader(path).Load()
		var ce *models.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("期望ConfigError, 得到: %v", err)
		}
	})

	t.Run("空配置", func(t *testing.T) {
		for _, content := range []string{"", "headers:", "# 只有注释\n"} {
			cfg, err := NewHeaderConfigLoader(writeFile(t, content)).Load()
			if err != nil {
				t.Fatalf("加载空配置失败 (%q): %v", content, err)
			}
			if cfg.Headers == nil {
				t.Fatalf("Headers应初始化为空map (%q)", content)
			}
		}
	})

	t.Run("文件过大", func(t *testing.T) {
		path := writeFile(t, strings.Repeat("# padding\n", MaxConfigFileSize/10+1))

		_, err := NewHeaderConfigLoader(path).Load()
		var ce *models.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("超大配置文件应返回ConfigError, 得到: %v", err)
		}
	})
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "headers.yaml")

	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("写入模板失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取模板失败: %v", err)
	}
	if string(data) != string(headerTemplate) {
		t.Error("写入内容应与内置模板一致")
	}

	// 已存在时不覆盖
	if err := os.WriteFile(path, []byte("headers:\n  Cookie: keep\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteTemplate(path, false); !errors.Is(err, ErrConfigExists) {
		t.Errorf("期望ErrConfigExists, 得到: %v", err)
	}
	cfg, err := NewHeaderConfigLoader(path).Load()
	if err != nil || cfg.Headers["cookie"] != "keep" {
		t.Errorf("已有配置不应被覆盖: %v %v", cfg, err)
	}

	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("force覆盖失败: %v", err)
	}
}
