package crawlers

import (
	"bytes"
	"compress/flate"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RecoveryAshes/urlrecon/internal/models"
	"github.com/RecoveryAshes/urlrecon/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// responseCtxKey 在colly上下文中保存响应的键
const responseCtxKey = "urlrecon.response"

// Response 抓取结果
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess 是否为2xx响应
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher 抓取接口
// 任意状态码都返回Response; 只有网络层失败(连接错误、超时、URL无效)返回error
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*Response, error)
}

// CollyFetcher 基于Colly的同步抓取器
// 请求串行执行,同一时刻只有一个请求在途
type CollyFetcher struct {
	collector *colly.Collector
	transport *cancelableTransport
	timeout   time.Duration
	mu        sync.Mutex

	// HTTP头部提供者
	headerProvider models.HeaderProvider
}

// NewCollyFetcher 创建抓取器
// 同一个CollyFetcher的所有请求使用相同的超时时间
func NewCollyFetcher(config models.CrawlConfig, timeout time.Duration, headerProvider models.HeaderProvider) *CollyFetcher {
	// 访问记录由爬取控制器的VisitedSet负责,Colly自身允许重复访问
	// 非2xx响应也交给OnResponse,由调用方决定如何处理
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(config.MaxBodySize),
	)

	transport := &cancelableTransport{
		base: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.InsecureSkipVerify, // 允许访问自签名、过期证书的站点
			},
			MaxIdleConnsPerHost: 4,
		},
	}
	c.WithTransport(transport)
	c.SetRequestTimeout(timeout)

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(responseCtxKey, r)
	})

	utils.Debugf("抓取器: 超时=%v, 跳过证书验证=%v", timeout, config.InsecureSkipVerify)

	return &CollyFetcher{
		collector:      c,
		transport:      transport,
		timeout:        timeout,
		headerProvider: headerProvider,
	}
}

// Timeout 返回单次请求超时时间
func (f *CollyFetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch 同步抓取URL
// Colly的Request不接收context,ctx通过传输层绑定到在途请求上,取消后立即中断连接
// ctx被取消时返回ctx.Err(),而不是FetchError
func (f *CollyFetcher) Fetch(ctx context.Context, urlStr string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	unbind := f.transport.bind(ctx)
	defer unbind()

	collyCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, urlStr, nil, collyCtx, f.requestHeaders()); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &models.FetchError{URL: urlStr, Cause: err}
	}

	r, ok := collyCtx.GetAny(responseCtxKey).(*colly.Response)
	if !ok || r == nil {
		return nil, &models.FetchError{URL: urlStr, Cause: errors.New("未收到响应")}
	}

	headers := http.Header{}
	if r.Headers != nil {
		headers = r.Headers.Clone()
	}

	body := r.Body
	if encoding := headers.Get("Content-Encoding"); encoding != "" {
		decoded, err := decodeBody(encoding, r.Body)
		if err != nil {
			// 解码失败,仍然使用原始body
			utils.Warnf("解码响应失败 [%s] (编码=%s): %v", urlStr, encoding, err)
		} else {
			body = decoded
		}
	}

	return &Response{
		URL:        urlStr,
		StatusCode: r.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}

// requestHeaders 获取本次请求使用的头部
func (f *CollyFetcher) requestHeaders() http.Header {
	if f.headerProvider == nil {
		return nil
	}
	headers, err := f.headerProvider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return nil
	}
	// Colly会向头部补充User-Agent,不能修改提供者的数据
	return headers.Clone()
}

// decodeBody 根据Content-Encoding解码响应体
// gzip由Colly处理,这里只处理deflate和br (Brotli)
func decodeBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decoded, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decoded, nil

	case "br":
		decoded, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decoded, nil

	case "", "gzip", "x-gzip", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}

// cancelableTransport 把当前绑定的ctx传递给在途请求
// 请求的context在响应体关闭时释放,读取body期间取消同样生效
type cancelableTransport struct {
	base http.RoundTripper

	mu  sync.Mutex
	ctx context.Context
}

// bind 绑定后续请求使用的ctx,返回解绑函数
func (t *cancelableTransport) bind(ctx context.Context) func() {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		t.ctx = nil
		t.mu.Unlock()
	}
}

// RoundTrip 实现http.RoundTripper接口
func (t *cancelableTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()

	if ctx == nil {
		return t.base.RoundTrip(req)
	}

	reqCtx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(ctx, cancel)
	release := func() {
		stop()
		cancel()
	}

	resp, err := t.base.RoundTrip(req.WithContext(reqCtx))
	if err != nil {
		release()
		return nil, err
	}
	resp.Body = &releasingBody{ReadCloser: resp.Body, release: release}
	return resp, nil
}

// releasingBody 关闭时释放请求的context
type releasingBody struct {
	io.ReadCloser
	release func()
	once    sync.Once
}

func (b *releasingBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
