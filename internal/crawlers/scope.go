package crawlers

import (
	"net/url"
	"strings"

	"github.com/RecoveryAshes/urlrecon/internal/models"
)

// ScopeFilter 同源与过滤规则
// 依次执行: 同源检查 -> 扩展名过滤 -> 子串过滤
type ScopeFilter struct {
	originHost string
	filter     models.FilterSpec
}

// NewScopeFilter 创建过滤器
func NewScopeFilter(originHost string, filter models.FilterSpec) *ScopeFilter {
	return &ScopeFilter{
		originHost: originHost,
		filter:     filter,
	}
}

// FilterScope 过滤候选URL集合,保持输入顺序
func FilterScope(candidates []string, originHost string, filter models.FilterSpec) []string {
	return NewScopeFilter(originHost, filter).Apply(candidates)
}

// Apply 返回满足全部规则的URL
func (s *ScopeFilter) Apply(candidates []string) []string {
	result := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if s.Allows(candidate) {
			result = append(result, candidate)
		}
	}
	return result
}

// Allows 判断单个URL是否在范围内且满足过滤条件
func (s *ScopeFilter) Allows(candidate string) bool {
	return s.InScope(candidate) && s.filter.Matches(candidate)
}

// InScope 同源检查
// 主机名包含目标主机名即视为同源(子串匹配,比精确匹配宽松)
func (s *ScopeFilter) InScope(candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.Contains(parsed.Host, s.originHost)
}

// IsDirectoryLike 以"/"结尾的URL被视为目录页,可以继续递归
func IsDirectoryLike(candidate string) bool {
	return strings.HasSuffix(candidate, "/")
}
