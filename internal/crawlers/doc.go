// Package crawlers 提供同源URL爬取所需的基础组件
//
// # 概述
//
// crawlers包不包含爬取流程本身(见core.Crawler),只提供可单独测试的组件:
// 抓取、链接提取、范围过滤、已访问集合与工作队列、JS关键字扫描。
//
// # 核心组件
//
// ## CollyFetcher
//
// 基于Colly的同步抓取器。每个实例有固定的超时时间,任意状态码都返回Response,
// 只有网络层失败返回*models.FetchError。gzip由Colly解码,br/deflate由decodeBody解码。
//
//	fetcher := NewCollyFetcher(config, config.FetchTimeout, headerProvider)
//	resp, err := fetcher.Fetch(ctx, "https://example.com/")
//
// ## URLExtractor
//
// 两遍提取,结果取并集:
//   - 结构化: a[href], script[src], link[href], img[src], iframe[src],按RFC 3986解析为绝对URL
//   - 正则兜底: https?://[^\s"']+ ,覆盖内联脚本、JSON、注释中的链接
//
//	extractor := NewURLExtractor()
//	candidates := extractor.ExtractCandidates(pageURL, string(resp.Body))
//
// ## ScopeFilter
//
// 同源(主机名子串匹配) -> 扩展名 -> 子串,按顺序过滤。重复应用结果不变。
//
//	inScope := FilterScope(candidates, target.Host, models.FilterSpec{Extension: "js"})
//
// ## VisitedSet / WorkQueue
//
// VisitedSet按字符串精确比较,只增不减,MarkIfUnvisited是原子的检查并标记。
// WorkQueue是(URL, 深度)的先进先出队列,替代调用栈递归。
//
// ## JSAnalyzer
//
// 使用更短超时的Fetcher抓取JS文件,状态码200时扫描敏感关键字。
//
//	analyzer := NewJSAnalyzer(NewCollyFetcher(config, config.JSTimeout, headerProvider))
//	finding, err := analyzer.Analyze(ctx, "https://example.com/app.js")
//
// # 已知的启发式规则
//
//   - 以"/"结尾的URL被视为目录页并继续递归,带查询串的URL可能被误判,无尾斜杠的目录页会被漏掉
//   - 同源检查使用主机名子串匹配,example.com 同样匹配 cdn.example.com 和 example.com.evil.net
package crawlers
