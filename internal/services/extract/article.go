package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/models"
)

const maxArticleBody = 10 << 20 // 10 MB response cap

// ArticleExtractor fetches a web page and runs readability over it to
// recover the main article content. The cleaned HTML is then fed
// through the HTML extractor to produce blocks.
type ArticleExtractor struct {
	client *http.Client
	html   *HTMLExtractor
	logger arbor.ILogger
}

func NewArticleExtractor(timeout time.Duration, logger arbor.ILogger) *ArticleExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ArticleExtractor{
		client: &http.Client{Timeout: timeout},
		html:   NewHTMLExtractor(logger),
		logger: logger,
	}
}

func (e *ArticleExtractor) Kind() models.ContentKind {
	return models.KindURLArticle
}

func (e *ArticleExtractor) Extract(ctx context.Context, content models.CapturedContent) (*models.NormalizedDocument, error) {
	pageURL := strings.TrimSpace(content.RawText)

	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("invalid article URL %q", pageURL))
	}

	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	article, err := readability.FromReader(strings.NewReader(body), parsed)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("readability parse for %s: %w", pageURL, err))
	}

	if strings.TrimSpace(article.TextContent) == "" {
		return nil, models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("no article content found at %s", pageURL))
	}

	doc, err := e.html.Extract(ctx, models.CapturedContent{RawHTML: article.Content})
	if err != nil {
		return nil, err
	}

	if article.Title != "" {
		doc.Title = article.Title
	}

	e.logger.Info().
		Str("url", pageURL).
		Str("title", doc.Title).
		Int("blocks", len(doc.Blocks)).
		Msg("Article extracted")

	return doc, nil
}

// fetch downloads the page, failing distinctly for unreachable hosts,
// error statuses, and non-HTML responses.
func (e *ArticleExtractor) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", models.NewPipelineError(models.ErrKindExtractionFailed, err)
	}
	req.Header.Set("User-Agent", "cliptoepub/"+common.GetVersion())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", models.NewPipelineError(models.ErrKindCancelled, ctx.Err())
		}
		return "", models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("fetch %s: %w", pageURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode))
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !strings.Contains(ctype, "html") && !strings.Contains(ctype, "xml") {
		return "", models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("fetch %s: non-HTML content type %q", pageURL, ctype))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBody))
	if err != nil {
		return "", models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("read %s: %w", pageURL, err))
	}
	if len(data) == 0 {
		return "", models.NewPipelineError(models.ErrKindExtractionFailed,
			fmt.Errorf("fetch %s: empty response body", pageURL))
	}

	return string(data), nil
}
