package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig `mapstructure:"crawl"`
	Logging LoggingConfig      `mapstructure:"logging"`
	Output  OutputConfig       `mapstructure:"output"`
	Headers HeadersConfig      `mapstructure:"headers"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ShowProgress bool `mapstructure:"show_progress"`
	NoColor      bool `mapstructure:"no_color"`
}

// HeadersConfig HTTP头部配置文件位置
type HeadersConfig struct {
	ConfigFile string `mapstructure:"config_file"`
}

// LoadConfig 加载配置文件
// 未指定路径且默认位置不存在配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".urlrecon"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	defaults := models.DefaultCrawlConfig()

	// 爬取配置默认值
	v.SetDefault("crawl.depth", defaults.Depth)
	v.SetDefault("crawl.fetch_timeout", defaults.FetchTimeout)
	v.SetDefault("crawl.js_timeout", defaults.JSTimeout)
	v.SetDefault("crawl.insecure_skip_verify", defaults.InsecureSkipVerify)
	v.SetDefault("crawl.max_body_size", defaults.MaxBodySize)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 输出配置默认值
	v.SetDefault("output.show_progress", true)
	v.SetDefault("output.no_color", false)

	// 头部配置默认值
	v.SetDefault("headers.config_file", "")
}

// MergeCLIFlags 合并命令行参数到爬取配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(depth int, ext string, match string, analyzeJS bool) models.CrawlConfig {
	crawl := c.Crawl
	crawl.Depth = depth
	crawl.Filter = models.FilterSpec{
		Extension: ext,
		Substring: match,
	}
	crawl.AnalyzeJS = analyzeJS
	return crawl
}
