package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile 默认头部配置文件路径
	DefaultConfigFile = "configs/headers.yaml"

	// MaxConfigFileSize 头部配置文件大小上限 (1MB)
	MaxConfigFileSize = 1 << 20
)

//go:embed headers_template.yaml
var headerTemplate []byte

// ErrConfigExists 生成模板时目标文件已存在
var ErrConfigExists = errors.New("头部配置文件已存在")

// HeaderConfigLoader 读取抓取请求使用的头部配置
// 文件不存在时使用内置模板,不会在磁盘上生成任何文件
type HeaderConfigLoader struct {
	path string
}

// NewHeaderConfigLoader 创建加载器,path为空时使用 DefaultConfigFile
func NewHeaderConfigLoader(path string) *HeaderConfigLoader {
	if path == "" {
		path = DefaultConfigFile
	}
	return &HeaderConfigLoader{path: path}
}

// Path 返回配置文件路径
func (l *HeaderConfigLoader) Path() string {
	return l.path
}

// Load 读取头部配置
func (l *HeaderConfigLoader) Load() (*models.HeaderConfig, error) {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.Debugf("未找到头部配置 %s, 使用内置模板", l.path)
		return parseHeaderConfig(l.path, headerTemplate)
	}
	if err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return nil, &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("文件过大: %d 字节, 上限 %d 字节", info.Size(), MaxConfigFileSize),
		}
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}
	return parseHeaderConfig(l.path, data)
}

// parseHeaderConfig 用viper解析YAML内容
func parseHeaderConfig(path string, data []byte) (*models.HeaderConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &models.ConfigError{FilePath: path, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{FilePath: path, Cause: fmt.Errorf("headers字段格式错误: %w", err)}
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	return &cfg, nil
}

// WriteTemplate 把内置模板写到path,用于 init-headers 命令
// 文件已存在且force为false时返回ErrConfigExists
func WriteTemplate(path string, force bool) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败 [%s]: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, headerTemplate, 0644); err != nil {
		return fmt.Errorf("写入头部配置模板失败 [%s]: %w", path, err)
	}
	return nil
}
