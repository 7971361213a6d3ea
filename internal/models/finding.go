package models

// JSFinding 单个JS文件的关键字命中结果
// 立即输出,不保存到爬取结果中
type JSFinding struct {
	URL     string   `json:"url"`
	Matches []string `json:"matches"` // 去重并排序后的命中片段
}
