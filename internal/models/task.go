package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusCancelled TaskStatus = "cancelled" // 已取消
)

// 默认超时
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultJSTimeout    = 5 * time.Second
	DefaultMaxBodySize  = 10 * 1024 * 1024
)

// TaskStats 任务统计
type TaskStats struct {
	VisitedURLs     int     `json:"visited_urls"`      // 已抓取页面数
	FailedFetches   int     `json:"failed_fetches"`    // 抓取失败数
	CandidateURLs   int     `json:"candidate_urls"`    // 提取到的候选URL总数(未过滤)
	InScopeURLs     int     `json:"in_scope_urls"`     // 最终结果URL数
	MaxDepthReached int     `json:"max_depth_reached"` // 实际到达的最大深度
	AnalyzedScripts int     `json:"analyzed_scripts"`  // 已分析的JS文件数
	JSFindings      int     `json:"js_findings"`       // 命中关键字的JS文件数
	Duration        float64 `json:"duration"`          // 总耗时(秒)
}

// CrawlConfig 爬取配置
type CrawlConfig struct {
	Depth     int        `json:"depth" mapstructure:"depth"`  // 最大递归深度 (默认:1)
	Filter    FilterSpec `json:"filter" mapstructure:"-"`     // URL过滤条件
	AnalyzeJS bool       `json:"analyze_js" mapstructure:"-"` // 是否扫描JS关键字

	FetchTimeout       time.Duration `json:"fetch_timeout" mapstructure:"fetch_timeout"`               // 页面抓取超时 (默认:10s)
	JSTimeout          time.Duration `json:"js_timeout" mapstructure:"js_timeout"`                     // JS分析抓取超时 (默认:5s)
	InsecureSkipVerify bool          `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"` // 跳过TLS证书验证
	MaxBodySize        int           `json:"max_body_size" mapstructure:"max_body_size"`               // 响应体大小上限(字节)
}

// DefaultCrawlConfig 默认爬取配置
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		Depth:              1,
		FetchTimeout:       DefaultFetchTimeout,
		JSTimeout:          DefaultJSTimeout,
		InsecureSkipVerify: true,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("深度不能为负数: %d", c.Depth)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("抓取超时必须大于0")
	}
	if c.JSTimeout <= 0 {
		return fmt.Errorf("JS分析超时必须大于0")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("响应体大小上限不能为负数")
	}
	return nil
}

// URLItem 工作队列中的一项
type URLItem struct {
	// URL 完整的URL字符串
	URL string

	// Depth 递归深度
	//   - 0: 入口URL
	//   - 1: 从入口页面发现的目录型链接
	//   - 以此类推...
	Depth int

	// SourceURL 发现此URL的页面(仅用于日志)
	SourceURL string
}

// CrawlResult 一次爬取的结果
type CrawlResult struct {
	Target CrawlTarget `json:"target"`
	Status TaskStatus  `json:"status"`

	// URLs 所有深度上发现的同源URL,去重并按字典序排列
	URLs []string `json:"urls"`

	Stats     TaskStats `json:"stats"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// ToJSON 序列化为JSON
func (r *CrawlResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
