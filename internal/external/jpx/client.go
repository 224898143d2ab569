package jpx

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/tse-screener/pkg/httputil"
	"github.com/wonny/tse-screener/pkg/logger"
)

// DefaultMasterURL is the listed-issues master published by JPX every month
const DefaultMasterURL = "https://www.jpx.co.jp/markets/statistics-equities/misc/tvdivq0000001vg2-att/data_j.xls"

// Client downloads the JPX listed-issues master list
// ⭐ SSOT: JPX 마스터 리스트 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	masterURL  string
}

// NewClient creates a new JPX client. masterURL may point at the xls file,
// a CSV export of it, or the statistics page that links to it.
func NewClient(httpClient *httputil.Client, log *logger.Logger, masterURL string) *Client {
	if masterURL == "" {
		masterURL = DefaultMasterURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.Module("jpx"),
		masterURL:  masterURL,
	}
}

// FetchMaster downloads and decodes the full master list (all segments)
func (c *Client) FetchMaster(ctx context.Context) ([]MasterRow, error) {
	body, err := c.httpClient.GetBytes(ctx, c.masterURL)
	if err != nil {
		return nil, fmt.Errorf("fetch master list: %w", err)
	}

	// 통계 페이지 URL이면 data_j 링크를 따라감 (1회만)
	if looksLikeHTML(body) {
		link, err := findMasterLink(body, c.masterURL)
		if err != nil {
			return nil, err
		}
		c.logger.WithField("url", link).Debug("Following master list link")

		body, err = c.httpClient.GetBytes(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("fetch master list: %w", err)
		}
	}

	rows, err := DecodeMaster(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithField("rows", len(rows)).Info("Master list loaded")
	return rows, nil
}

func looksLikeHTML(body []byte) bool {
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.Contains(head, []byte("<html"))
}

// findMasterLink picks the first xls/csv link on the page, preferring data_j files
func findMasterLink(page []byte, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse master list page: %w", err)
	}

	var candidates []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		if strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".csv") {
			candidates = append(candidates, href)
		}
	})
	if len(candidates) == 0 {
		return "", fmt.Errorf("no master list link on %s", pageURL)
	}

	pick := candidates[0]
	for _, href := range candidates {
		if strings.Contains(href, "data_j") {
			pick = href
			break
		}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(pick)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", pick, err)
	}
	return base.ResolveReference(ref).String(), nil
}
