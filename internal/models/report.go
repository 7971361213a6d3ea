package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CrawlReport JSON运行报告
type CrawlReport struct {
	// 任务信息
	RunID     string     `json:"run_id"`
	TargetURL string     `json:"target_url"`
	Origin    string     `json:"origin"`
	Status    TaskStatus `json:"status"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 过滤条件
	Depth     int        `json:"depth"`
	Filter    FilterSpec `json:"filter"`
	AnalyzeJS bool       `json:"analyze_js"`

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 结果
	URLs []string `json:"urls"`
}

// NewCrawlReport 根据爬取结果和配置生成报告
func NewCrawlReport(result *CrawlResult, config CrawlConfig) *CrawlReport {
	urls := result.URLs
	if urls == nil {
		urls = []string{}
	}
	return &CrawlReport{
		RunID:     uuid.NewString(),
		TargetURL: result.Target.URL,
		Origin:    result.Target.Origin(),
		Status:    result.Status,
		StartTime: result.StartedAt,
		EndTime:   result.EndedAt,
		Duration:  result.Stats.Duration,
		Depth:     config.Depth,
		Filter:    config.Filter,
		AnalyzeJS: config.AnalyzeJS,
		Stats:     result.Stats,
		URLs:      urls,
	}
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
