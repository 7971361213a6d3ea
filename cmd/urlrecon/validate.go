package main

import (
	"fmt"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
)

// ValidateFlags 验证命令行标志
// 目标URL格式不合法只给出警告,实际错误会在抓取阶段体现
func ValidateFlags(targetURL string, depth int) error {
	if targetURL == "" {
		return fmt.Errorf("必须指定目标URL")
	}

	if depth < 0 {
		return fmt.Errorf("爬取深度不能为负数,当前值: %d", depth)
	}

	if err := models.NewCrawlTarget(targetURL).Validate(); err != nil {
		utils.Warnf("目标URL可能无效: %v", err)
	}

	return nil
}
