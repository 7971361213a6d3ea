package models

import "strings"

// FilterSpec URL过滤条件
// 空字符串表示该维度不过滤
type FilterSpec struct {
	Extension string `json:"extension,omitempty"` // 扩展名(不区分大小写的后缀匹配)
	Substring string `json:"substring,omitempty"` // 子串(不区分大小写的包含匹配)
}

// HasExtension 是否启用扩展名过滤
func (f FilterSpec) HasExtension() bool {
	return f.Extension != ""
}

// HasSubstring 是否启用子串过滤
func (f FilterSpec) HasSubstring() bool {
	return f.Substring != ""
}

// Matches 判断单个URL是否满足扩展名和子串过滤条件(不含同源检查)
func (f FilterSpec) Matches(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if f.HasExtension() && !strings.HasSuffix(lower, "."+strings.ToLower(f.Extension)) {
		return false
	}
	if f.HasSubstring() && !strings.Contains(lower, strings.ToLower(f.Substring)) {
		return false
	}
	return true
}

// WantsJSAnalysis JS关键字扫描只在扩展名过滤恰好为"js"时触发
func (f FilterSpec) WantsJSAnalysis() bool {
	return f.Extension == "js"
}
