package models

import (
	"fmt"
	"net/url"
)

// CrawlTarget 爬取目标
// 创建后不可修改; URL无法解析时Origin为空,错误将在抓取阶段暴露
type CrawlTarget struct {
	URL    string `json:"url"`
	Scheme string `json:"scheme"`
	Host   string `json:"host"` // 含端口,同源判断使用此字段
}

// NewCrawlTarget 创建爬取目标
func NewCrawlTarget(rawURL string) CrawlTarget {
	target := CrawlTarget{URL: rawURL}
	if parsed, err := url.Parse(rawURL); err == nil {
		target.Scheme = parsed.Scheme
		target.Host = parsed.Host
	}
	return target
}

// Origin 返回 scheme://host
func (t CrawlTarget) Origin() string {
	if t.Scheme == "" && t.Host == "" {
		return ""
	}
	return t.Scheme + "://" + t.Host
}

// Validate 检查目标是否为可抓取的HTTP(S) URL
// 只用于提示,爬取本身不依赖它
func (t CrawlTarget) Validate() error {
	if _, err := url.Parse(t.URL); err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if t.Scheme != "http" && t.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议: %q", t.URL)
	}
	if t.Host == "" {
		return fmt.Errorf("URL缺少主机名: %q", t.URL)
	}
	return nil
}
