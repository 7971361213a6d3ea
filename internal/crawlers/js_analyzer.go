package crawlers

import (
	"context"
	"net/http"
	"regexp"
	"sort"

	"github.com/RecoveryAshes/urlrecon/internal/models"
)

// SensitiveKeywordPattern 敏感关键字 + 之后最多50个字符(遇到换行或引号停止)
var SensitiveKeywordPattern = regexp.MustCompile(`(?i)(api|key|token|admin|debug|config|endpoint)[^\n"']{0,50}`)

// JSAnalyzer JS关键字扫描器
// 尽力而为的附加扫描,不影响爬取结果
type JSAnalyzer struct {
	fetcher Fetcher
	pattern *regexp.Regexp
}

// NewJSAnalyzer 创建JS扫描器
// fetcher的超时应短于页面抓取超时
func NewJSAnalyzer(fetcher Fetcher) *JSAnalyzer {
	return &JSAnalyzer{
		fetcher: fetcher,
		pattern: SensitiveKeywordPattern,
	}
}

// Analyze 抓取并扫描JS文件
// 状态码非200或无命中时返回nil, nil; 抓取失败返回错误
func (a *JSAnalyzer) Analyze(ctx context.Context, jsURL string) (*models.JSFinding, error) {
	resp, err := a.fetcher.Fetch(ctx, jsURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	matches := a.Scan(string(resp.Body))
	if len(matches) == 0 {
		return nil, nil
	}

	return &models.JSFinding{
		URL:     jsURL,
		Matches: matches,
	}, nil
}

// Scan 返回文本中去重并排序后的命中片段
func (a *JSAnalyzer) Scan(content string) []string {
	found := a.pattern.FindAllString(content, -1)
	if len(found) == 0 {
		return nil
	}

	unique := make(map[string]struct{}, len(found))
	for _, m := range found {
		unique[m] = struct{}{}
	}

	matches := make([]string, 0, len(unique))
	for m := range unique {
		matches = append(matches, m)
	}
	sort.Strings(matches)
	return matches
}
