package models

import "fmt"

// FetchError 抓取失败(网络错误、超时、非2xx状态码)
type FetchError struct {
	URL        string
	StatusCode int   // 非0表示收到了响应但状态码不是2xx
	Cause      error // 网络层错误
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("抓取失败 [%s]: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("抓取失败 [%s]: HTTP %d", e.URL, e.StatusCode)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ConfigError 配置文件错误
// 表示配置文件解析失败
type ConfigError struct {
	// FilePath 配置文件路径
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
