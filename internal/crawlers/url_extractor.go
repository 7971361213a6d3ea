package crawlers

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// rawURLPattern 原始文本中的http(s)链接: 协议之后直到空白或引号为止
var rawURLPattern = regexp.MustCompile(`https?://[^\s"']+`)

// LinkSource 需要提取链接的标签/属性组合
type LinkSource struct {
	Tag       string
	Attribute string
}

// DefaultLinkSources 默认提取的标签/属性
var DefaultLinkSources = []LinkSource{
	{"a", "href"},
	{"script", "src"},
	{"link", "href"},
	{"img", "src"},
	{"iframe", "src"},
}

// URLExtractor URL提取器
// 职责: 从响应文本中提取候选URL,结构化解析与正则兜底两遍结果取并集
type URLExtractor struct {
	sources []LinkSource
	pattern *regexp.Regexp
}

// NewURLExtractor 创建URL提取器实例
func NewURLExtractor() *URLExtractor {
	return &URLExtractor{
		sources: DefaultLinkSources,
		pattern: rawURLPattern,
	}
}

// ExtractCandidates 提取候选URL
// 返回去重后按字典序排列的绝对URL
func (e *URLExtractor) ExtractCandidates(baseURL string, htmlText string) []string {
	candidates := make(map[string]struct{})

	// 结构化提取失败不影响正则兜底
	structured, err := e.ExtractFromHTML(htmlText, baseURL)
	if err == nil {
		for _, link := range structured {
			candidates[link] = struct{}{}
		}
	}

	for _, link := range e.ExtractFromText(htmlText) {
		candidates[link] = struct{}{}
	}

	return sortedKeys(candidates)
}

// ExtractFromHTML 从HTML标签属性提取链接,并按RFC 3986解析为绝对URL
func (e *URLExtractor) ExtractFromHTML(htmlContent string, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("解析baseURL失败: %w", err)
	}

	root, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	var links []string
	for _, source := range e.sources {
		attr := source.Attribute
		doc.Find(source.Tag + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			value, _ := s.Attr(attr)
			if link, ok := resolveReference(base, value); ok {
				links = append(links, link)
			}
		})
	}

	return links, nil
}

// ExtractFromText 正则兜底: 捕获内联脚本、JSON、注释中的链接
func (e *URLExtractor) ExtractFromText(text string) []string {
	return e.pattern.FindAllString(text, -1)
}

// resolveReference 将属性值解析为绝对URL
// 空值和无法解析的值返回false
func resolveReference(base *url.URL, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	ref, err := url.Parse(value)
	if err != nil {
		return "", false
	}

	return base.ResolveReference(ref).String(), true
}

// sortedKeys 返回集合中按字典序排列的元素
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
