package models

import (
	"fmt"
	"net/http"
	"strings"
)

// HeaderConfig 头部配置文件内容
// viper读取时键名会被转为小写,使用前需要规范化
type HeaderConfig struct {
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
}

// HeaderProvider 为每次抓取提供请求头部
type HeaderProvider interface {
	GetHeaders() (http.Header, error)
}

// ParseHeaderArgs 解析 -H 参数,格式 "Name: Value"
// 同名头部以最后一次出现为准
func ParseHeaderArgs(args []string) (http.Header, error) {
	headers := make(http.Header, len(args))
	for i, arg := range args {
		name, value, found := strings.Cut(arg, ":")
		if !found {
			return nil, fmt.Errorf("-H 第%d项 %q 缺少冒号,应为 'Name: Value'", i+1, arg)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("-H 第%d项 %q 缺少头部名称", i+1, arg)
		}
		headers.Set(name, strings.TrimSpace(value))
	}
	return headers, nil
}

// ValidationError 头部不合法
type ValidationError struct {
	Source string // 默认 / 配置文件 / 命令行
	Header string
	Reason string
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("头部 %q 不合法: %s", e.Header, e.Reason)
	}
	return fmt.Sprintf("%s头部 %q 不合法: %s", e.Source, e.Header, e.Reason)
}
