package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// headerConfigPath 在临时目录中写入头部配置,content为空时返回一个尚不存在的路径
func headerConfigPath(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return path
}

func TestHeaderManager_GetMergedHeaders(t *testing.T) {
	t.Run("默认头部", func(t *testing.T) {
		hm, err := NewHeaderManager(headerConfigPath(t, ""), nil)
		require.NoError(t, err)

		headers := hm.GetMergedHeaders()
		assert.Equal(t, DefaultUserAgent, headers.Get("User-Agent"))
		assert.Equal(t, "*/*", headers.Get("Accept"))
		assert.Equal(t, "gzip, deflate, br", headers.Get("Accept-Encoding"))
	})

	t.Run("优先级: 默认 < 配置文件 < 命令行", func(t *testing.T) {
		path := headerConfigPath(t, `headers:
  X-Config: from-config
  User-Agent: config-agent
  Accept: text/html
`)
		hm, err := NewHeaderManager(path, []string{
			"X-CLI: from-cli",
			"User-Agent: cli-agent",
		})
		require.NoError(t, err)
		require.NoError(t, hm.LoadConfig())

		merged := hm.GetMergedHeaders()
		assert.Equal(t, "cli-agent", merged.Get("User-Agent"))
		assert.Equal(t, "text/html", merged.Get("Accept"))
		assert.Equal(t, "from-config", merged.Get("X-Config"))
		assert.Equal(t, "from-cli", merged.Get("X-Cli"))
		assert.Equal(t, "gzip, deflate, br", merged.Get("Accept-Encoding"))
	})
}

func TestHeaderManager_GetSafeHeaders(t *testing.T) {
	hm, err := NewHeaderManager(headerConfigPath(t, ""), []string{
		"User-Agent: CustomBot/1.0",
		"Authorization: Bearer secret-token-12345",
		"X-API-Key: api-key-67890",
	})
	require.NoError(t, err)

	safe := hm.GetSafeHeaders()
	assert.Equal(t, "CustomBot/1.0", safe["User-Agent"])
	assert.Equal(t, "Bearer ***", safe["Authorization"])
	assert.Equal(t, "api-***7890", safe["X-Api-Key"])
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"Authorization", "Bearer secret-token-12345", "Bearer ***"},
		{"Authorization", "Basic dXNlcjpwYXNz", "Basic ***"},
		{"Cookie", "session=abc123; theme=dark", "session=***; theme=***"},
		{"X-Api-Key", "key12345678", "key1***5678"},
		{"X-Token", "short", "***"},
		{"X-Token", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, maskValue(tt.name, tt.value))
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("User-Agent", DefaultUserAgent)
	headers.Set("Accept-Encoding", "gzip, deflate, br")
	headers.Set("X-Session-Id", "abcdefghijkl")

	safe := redactHeaders(headers)
	assert.Equal(t, DefaultUserAgent, safe["User-Agent"])
	assert.Equal(t, "gzip, deflate, br", safe["Accept-Encoding"])
	assert.Equal(t, "abcd***ijkl", safe["X-Session-Id"])

	formatted := formatHeaders(headers)
	assert.NotContains(t, formatted, "efgh")
	assert.True(t, strings.HasPrefix(formatted, "Accept-Encoding: gzip"), formatted)
}

func TestValidateHeaders(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		value   string
		wantErr bool
	}{
		{"普通头部", "X-Forwarded-For", "127.0.0.1", false},
		{"token字符", "X_Custom.Header", "v", false},
		{"空值", "X-Empty", "", false},
		{"制表符", "X-Tab", "a\tb", false},
		{"UTF-8值", "X-Note", "测试", false},
		{"最大长度", "X-Long", strings.Repeat("a", maxHeaderValueLength), false},
		{"超过最大长度", "X-Long", strings.Repeat("a", maxHeaderValueLength+1), true},
		{"CRLF注入", "X-Evil", "a\r\nX-Injected: 1", true},
		{"名称含空格", "User Agent", "v", true},
		{"名称含冒号", "X:Y", "v", true},
		{"Host不可覆盖", "host", "example.com", true},
		{"Connection不可覆盖", "Connection", "close", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 直接写map以保留非规范名称
			headers := http.Header{tt.header: {tt.value}}
			err := validateHeaders("命令行", headers)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "命令行", ve.Source)
			assert.Equal(t, tt.header, ve.Header)
		})
	}
}

func TestHeaderManager_GetHeaders(t *testing.T) {
	t.Run("命令行格式错误", func(t *testing.T) {
		_, err := NewHeaderManager(headerConfigPath(t, ""), []string{"InvalidFormat"})
		assert.Error(t, err)
	})

	t.Run("禁止头部返回验证错误", func(t *testing.T) {
		hm, err := NewHeaderManager(headerConfigPath(t, ""), []string{"Host: example.com"})
		require.NoError(t, err)

		_, err = hm.GetHeaders()
		var ve *models.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "命令行", ve.Source)

		// 错误会被缓存
		_, err = hm.GetHeaders()
		assert.Error(t, err)
	})

	t.Run("配置文件不存在时使用内置模板", func(t *testing.T) {
		path := headerConfigPath(t, "")
		hm, err := NewHeaderManager(path, nil)
		require.NoError(t, err)

		headers, err := hm.GetHeaders()
		require.NoError(t, err)
		assert.Equal(t, DefaultUserAgent, headers.Get("User-Agent"))
		assert.NoFileExists(t, path)
	})

	t.Run("返回副本", func(t *testing.T) {
		hm, err := NewHeaderManager(headerConfigPath(t, ""), []string{"X-Custom: test-value"})
		require.NoError(t, err)

		first, err := hm.GetHeaders()
		require.NoError(t, err)
		first.Set("X-Custom", "modified")
		first.Del("User-Agent")

		second, err := hm.GetHeaders()
		require.NoError(t, err)
		assert.Equal(t, "test-value", second.Get("X-Custom"))
		assert.Equal(t, DefaultUserAgent, second.Get("User-Agent"))
	})

	t.Run("配置文件格式错误", func(t *testing.T) {
		hm, err := NewHeaderManager(headerConfigPath(t, "headers: [broken"), nil)
		require.NoError(t, err)

		_, err = hm.GetHeaders()
		assert.Error(t, err)
	})
}

func TestHeaderManager_AppliedToRequests(t *testing.T) {
	var received http.Header
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer site.Close()

	hm, err := NewHeaderManager(headerConfigPath(t, ""), []string{"Cookie: session=abc"})
	require.NoError(t, err)

	crawler, err := NewCrawler(site.URL+"/", testCrawlConfig(0), hm)
	require.NoError(t, err)
	_, err = crawler.Crawl(context.Background())
	require.NoError(t, err)

	require.NotNil(t, received)
	assert.Equal(t, "session=abc", received.Get("Cookie"))
	assert.Equal(t, DefaultUserAgent, received.Get("User-Agent"))
}
