package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"social-campaign-platform/internal/logger"
)

// LinkPreview holds the Open Graph metadata extracted from a media URL so
// the wizard can show a preview card before the user attaches it.
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

type LinkPreviewService struct {
	client *http.Client
}

func NewLinkPreviewService() *LinkPreviewService {
	return &LinkPreviewService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *LinkPreviewService) Fetch(ctx context.Context, rawURL string) (*LinkPreview, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("unsupported URL scheme: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "SocialCampaignBot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	preview := &LinkPreview{URL: rawURL}

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		prop, _ := sel.Attr("property")
		content, _ := sel.Attr("content")
		if content == "" {
			return
		}
		switch prop {
		case "og:title":
			preview.Title = content
		case "og:description":
			preview.Description = content
		case "og:image":
			preview.ImageURL = content
		case "og:site_name":
			preview.SiteName = content
		}
	})

	// Fall back to plain HTML tags when Open Graph is absent
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			preview.Description = desc
		}
	}

	logger.Debug("Fetched link preview", "url", rawURL, "title", preview.Title)
	return preview, nil
}
