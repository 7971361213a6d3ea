package core

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/RecoveryAshes/urlrecon/internal/config"
	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
	"golang.org/x/net/http/httpguts"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (RedTeamRecon)"

	// maxHeaderValueLength 单个头部值上限 (8KB)
	maxHeaderValueLength = 8 << 10
)

// clientManagedHeaders 由HTTP客户端自行维护,不允许覆盖
var clientManagedHeaders = map[string]bool{
	"Host":              true,
	"Content-Length":    true,
	"Transfer-Encoding": true,
	"Connection":        true,
	"Keep-Alive":        true,
	"Upgrade":           true,
}

// secretMarkers 头部名称包含这些片段时,日志中隐藏其值
var secretMarkers = []string{"auth", "cookie", "token", "key", "secret", "session", "password", "credential"}

// HeaderManager 管理页面抓取和JS分析共用的请求头部
// 优先级: 默认 < 头部配置文件 < 命令行 -H
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header

	loader *config.HeaderConfigLoader
	loaded bool

	// 合并并验证后的头部,首次GetHeaders时生成
	merged    http.Header
	mergeErr  error
	mergeOnce sync.Once
}

// NewHeaderManager 创建头部管理器
// configFile为空时读取 config.DefaultConfigFile,文件不存在时不报错
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.ParseHeaderArgs(cliHeaders)
	if err != nil {
		return nil, err
	}

	return &HeaderManager{
		defaults: http.Header{
			"User-Agent": {DefaultUserAgent},
			"Accept":     {"*/*"},
			// br和deflate由抓取器解码
			"Accept-Encoding": {"gzip, deflate, br"},
		},
		config: http.Header{},
		cli:    cli,
		loader: config.NewHeaderConfigLoader(configFile),
	}, nil
}

// LoadConfig 读取头部配置文件,只读取一次
func (hm *HeaderManager) LoadConfig() error {
	if hm.loaded {
		return nil
	}

	cfg, err := hm.loader.Load()
	if err != nil {
		return err
	}

	// viper返回的键名是小写的,这里统一规范化
	hm.config = make(http.Header, len(cfg.Headers))
	for name, value := range cfg.Headers {
		hm.config.Set(name, value)
	}
	hm.loaded = true

	if len(hm.config) > 0 {
		utils.Debugf("从 %s 加载%d个头部: %s", hm.loader.Path(), len(hm.config), formatHeaders(hm.config))
	}
	return nil
}

// Validate 检查三个来源的头部,返回遇到的第一个问题
func (hm *HeaderManager) Validate() error {
	sources := []struct {
		name    string
		headers http.Header
	}{
		{"默认", hm.defaults},
		{"配置文件", hm.config},
		{"命令行", hm.cli},
	}

	for _, src := range sources {
		if err := validateHeaders(src.name, src.headers); err != nil {
			return err
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	merged := hm.defaults.Clone()
	for _, layer := range []http.Header{hm.config, hm.cli} {
		for name, values := range layer {
			merged[name] = append([]string(nil), values...)
		}
	}
	return merged
}

// GetSafeHeaders 返回用于日志的头部,敏感值已隐藏
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return redactHeaders(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 加载、验证、合并只执行一次,之后返回同一份结果的副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.mergeOnce.Do(func() {
		if err := hm.LoadConfig(); err != nil {
			hm.mergeErr = err
			return
		}
		if err := hm.Validate(); err != nil {
			hm.mergeErr = err
			return
		}
		hm.merged = hm.GetMergedHeaders()
		utils.Debugf("请求头部: %s", formatHeaders(hm.merged))
	})

	if hm.mergeErr != nil {
		return nil, hm.mergeErr
	}
	return hm.merged.Clone(), nil
}

// validateHeaders 名称必须是RFC 7230 token,值不能含控制字符(防止CRLF注入)
func validateHeaders(source string, headers http.Header) error {
	for name, values := range headers {
		if clientManagedHeaders[http.CanonicalHeaderKey(name)] {
			return &models.ValidationError{Source: source, Header: name, Reason: "由HTTP客户端管理,不能自定义"}
		}
		if !httpguts.ValidHeaderFieldName(name) {
			return &models.ValidationError{Source: source, Header: name, Reason: "名称只能包含token字符"}
		}
		for _, value := range values {
			if len(value) > maxHeaderValueLength {
				return &models.ValidationError{Source: source, Header: name, Reason: "值超过8KB"}
			}
			if !httpguts.ValidHeaderFieldValue(value) {
				return &models.ValidationError{Source: source, Header: name, Reason: "值包含控制字符"}
			}
		}
	}
	return nil
}

// isSecretHeader 判断头部值是否需要在日志中隐藏
func isSecretHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range secretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// maskValue 隐藏敏感值
// "Bearer xxx" 保留认证方案; Cookie保留cookie名; 其余长值保留首尾4个字符
func maskValue(name, value string) string {
	if http.CanonicalHeaderKey(name) == "Cookie" {
		pairs := strings.Split(value, ";")
		for i, pair := range pairs {
			cookieName, _, _ := strings.Cut(strings.TrimSpace(pair), "=")
			pairs[i] = cookieName + "=***"
		}
		return strings.Join(pairs, "; ")
	}

	if scheme, _, found := strings.Cut(value, " "); found && scheme != "" {
		return scheme + " ***"
	}
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// redactHeaders 每个头部只取第一个值,敏感值被隐藏
func redactHeaders(headers http.Header) map[string]string {
	safe := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		if isSecretHeader(name) {
			safe[name] = maskValue(name, values[0])
		} else {
			safe[name] = values[0]
		}
	}
	return safe
}

// formatHeaders 按名称排序输出 "Name: value, ..." 形式的脱敏字符串
func formatHeaders(headers http.Header) string {
	safe := redactHeaders(headers)
	names := make([]string, 0, len(safe))
	for name := range safe {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+safe[name])
	}
	return strings.Join(parts, ", ")
}
