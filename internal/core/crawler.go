package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RecoveryAshes/urlrecon/internal/crawlers"
	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
)

// FindingHandler 接收JS扫描命中结果
type FindingHandler func(finding models.JSFinding)

// Crawler 同源爬取控制器
// 一个实例对应一次爬取运行,拥有独立的已访问集合
type Crawler struct {
	config models.CrawlConfig
	target models.CrawlTarget

	// 组件
	fetcher   crawlers.Fetcher
	extractor *crawlers.URLExtractor
	scope     *crawlers.ScopeFilter
	analyzer  *crawlers.JSAnalyzer

	// 运行状态
	visited  *crawlers.VisitedSet
	analyzed map[string]struct{} // 已扫描的JS URL,每个只扫描一次

	onFinding    FindingHandler
	showProgress bool

	// 统计信息
	stats models.TaskStats
	mu    sync.RWMutex
}

// NewCrawler 创建爬取控制器
// targetURL不做格式校验,无效URL在抓取阶段作为抓取失败处理
func NewCrawler(targetURL string, config models.CrawlConfig, headerProvider models.HeaderProvider) (*Crawler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("无效的爬取配置: %w", err)
	}

	target := models.NewCrawlTarget(targetURL)

	c := &Crawler{
		config:    config,
		target:    target,
		fetcher:   crawlers.NewCollyFetcher(config, config.FetchTimeout, headerProvider),
		extractor: crawlers.NewURLExtractor(),
		scope:     crawlers.NewScopeFilter(target.Host, config.Filter),
		visited:   crawlers.NewVisitedSet(),
		analyzed:  make(map[string]struct{}),
		onFinding: logFinding,
	}

	if config.AnalyzeJS {
		// JS分析使用更短的超时
		c.analyzer = crawlers.NewJSAnalyzer(crawlers.NewCollyFetcher(config, config.JSTimeout, headerProvider))
	}

	return c, nil
}

// SetFindingHandler 设置JS命中结果的处理函数
func (c *Crawler) SetFindingHandler(handler FindingHandler) {
	if handler == nil {
		handler = logFinding
	}
	c.onFinding = handler
}

// SetShowProgress 是否在JS扫描时显示进度条
func (c *Crawler) SetShowProgress(show bool) {
	c.showProgress = show
}

// Crawl 执行爬取任务
// 执行流程:
//  1. 以(目标URL, 0)初始化工作队列
//  2. 出队: 深度超过上限或已访问则跳过,否则标记为已访问
//  3. 抓取页面,失败则记录警告并跳过(不向上传播)
//  4. 提取候选URL并按同源/扩展名/子串过滤,并入结果集
//  5. 以"/"结尾的过滤结果以深度+1入队
//  6. 启用JS分析且扩展名过滤为"js"时,扫描本页的过滤结果
//  7. 队列清空后返回去重排序的结果
//
// 抓取失败不会返回错误; 只有ctx被取消时返回ctx.Err()和已收集的部分结果
func (c *Crawler) Crawl(ctx context.Context) (*models.CrawlResult, error) {
	startTime := time.Now()

	utils.Infof("🚀 开始爬取: %s", c.target.URL)
	utils.Infof("最大深度: %d, 扩展名: %q, 匹配: %q, JS分析: %v",
		c.config.Depth, c.config.Filter.Extension, c.config.Filter.Substring, c.config.AnalyzeJS)

	found := make(map[string]struct{})
	queue := crawlers.NewWorkQueue()
	queue.Push(models.URLItem{URL: c.target.URL, Depth: 0})

	var crawlErr error
	for {
		if err := ctx.Err(); err != nil {
			utils.Warnf("爬取被中断,剩余 %d 个URL未处理", queue.PendingCount())
			crawlErr = err
			break
		}

		item, ok := queue.Pop()
		if !ok {
			break
		}

		// 唯一的终止条件: 超过深度或已访问
		if item.Depth > c.config.Depth {
			continue
		}
		if !c.visited.MarkIfUnvisited(item.URL) {
			continue
		}

		inScope := c.processPage(ctx, item)
		for _, link := range inScope {
			found[link] = struct{}{}
			if crawlers.IsDirectoryLike(link) {
				queue.Push(models.URLItem{URL: link, Depth: item.Depth + 1, SourceURL: item.URL})
			}
		}

		if c.analyzer != nil && c.config.Filter.WantsJSAnalysis() {
			c.analyzeScripts(ctx, inScope)
		}
	}

	urls := make([]string, 0, len(found))
	for link := range found {
		urls = append(urls, link)
	}
	sort.Strings(urls)

	c.mu.Lock()
	c.stats.InScopeURLs = len(urls)
	c.stats.Duration = time.Since(startTime).Seconds()
	stats := c.stats
	c.mu.Unlock()

	status := models.TaskStatusCompleted
	if crawlErr != nil {
		status = models.TaskStatusCancelled
	}

	utils.Infof("✅ 爬取完成: 抓取 %d 个页面, 失败 %d 个, 发现 %d 个URL, 耗时 %.2f秒",
		stats.VisitedURLs, stats.FailedFetches, stats.InScopeURLs, stats.Duration)

	return &models.CrawlResult{
		Target:    c.target,
		Status:    status,
		URLs:      urls,
		Stats:     stats,
		StartedAt: startTime,
		EndedAt:   time.Now(),
	}, crawlErr
}

// processPage 抓取单个页面并返回过滤后的URL
func (c *Crawler) processPage(ctx context.Context, item models.URLItem) []string {
	c.mu.Lock()
	c.stats.VisitedURLs++
	if item.Depth > c.stats.MaxDepthReached {
		c.stats.MaxDepthReached = item.Depth
	}
	c.mu.Unlock()

	utils.Debugf("抓取: %s (深度=%d)", item.URL, item.Depth)

	resp, err := c.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		// 只有整个爬取被取消才静默跳过; 单次请求超时属于抓取失败
		if ctx.Err() != nil {
			return nil
		}
		c.recordFailure(item, err)
		return nil
	}
	if !resp.IsSuccess() {
		c.recordFailure(item, &models.FetchError{URL: item.URL, StatusCode: resp.StatusCode})
		return nil
	}

	candidates := c.extractor.ExtractCandidates(item.URL, string(resp.Body))
	inScope := c.scope.Apply(candidates)

	c.mu.Lock()
	c.stats.CandidateURLs += len(candidates)
	c.mu.Unlock()

	utils.Debugf("页面 %s: 候选URL %d 个, 过滤后 %d 个", item.URL, len(candidates), len(inScope))
	return inScope
}

// recordFailure 记录抓取失败
func (c *Crawler) recordFailure(item models.URLItem, err error) {
	c.mu.Lock()
	c.stats.FailedFetches++
	c.mu.Unlock()

	utils.Logger.Warn().
		Err(err).
		Str("url", item.URL).
		Int("depth", item.Depth).
		Msg("抓取失败,跳过该URL")
}

// analyzeScripts 扫描JS文件中的敏感关键字
// 结果只输出,不影响爬取结果
func (c *Crawler) analyzeScripts(ctx context.Context, jsURLs []string) {
	pending := make([]string, 0, len(jsURLs))
	for _, jsURL := range jsURLs {
		if _, done := c.analyzed[jsURL]; done {
			continue
		}
		c.analyzed[jsURL] = struct{}{}
		pending = append(pending, jsURL)
	}
	if len(pending) == 0 {
		return
	}

	var bar interface{ Add(int) error }
	if c.showProgress {
		progress := utils.NewProgressBar(len(pending), "🔎 JS分析")
		defer progress.Finish()
		bar = progress
	}

	for _, jsURL := range pending {
		if ctx.Err() != nil {
			return
		}

		finding, err := c.analyzer.Analyze(ctx, jsURL)

		c.mu.Lock()
		c.stats.AnalyzedScripts++
		if finding != nil {
			c.stats.JSFindings++
		}
		c.mu.Unlock()

		if err != nil {
			utils.Logger.Warn().Err(err).Str("url", jsURL).Msg("JS分析失败")
		} else if finding != nil {
			c.onFinding(*finding)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
}

// logFinding 默认的命中结果输出
func logFinding(finding models.JSFinding) {
	utils.Logger.Info().
		Str("url", finding.URL).
		Strs("matches", finding.Matches).
		Msg("🔑 JS分析命中")
}

// GetStats 获取统计信息
func (c *Crawler) GetStats() models.TaskStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Target 返回爬取目标
func (c *Crawler) Target() models.CrawlTarget {
	return c.target
}
