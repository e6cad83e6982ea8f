package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hadespm/hades/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// IndexProgress is called with the number of entries collected so far
type IndexProgress func(n int)

// FetchIndex downloads the directory listing at baseURL and returns the text of
// every link in document order.
func FetchIndex(ctx context.Context, c *Client, baseURL string, progress IndexProgress) ([]string, error) {
	url := strings.TrimRight(baseURL, "/") + "/"
	logrus.Debugf("Fetching package index: %s", url)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, &models.HadesError{
			Type: models.ErrConnection,
			Err:  fmt.Errorf("cannot reach mirror %s: %w", url, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.HadesError{
			Type: models.ErrConnection,
			Err:  fmt.Errorf("cannot reach mirror %s: status %s", url, resp.Status),
		}
	}

	entries, err := parseLinks(resp.Body, progress)
	if err != nil {
		return nil, &models.HadesError{
			Type: models.ErrConnection,
			Err:  fmt.Errorf("reading index from %s: %w", url, err),
		}
	}

	logrus.Debugf("Index contains %d entries", len(entries))
	return entries, nil
}

// parseLinks collects the text content of every <a> element
func parseLinks(r io.Reader, progress IndexProgress) ([]string, error) {
	var (
		entries []string
		text    strings.Builder
		depth   int
	)

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, err
			}
			return entries, nil
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "a" {
				if depth == 0 {
					text.Reset()
				}
				depth++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "a" && depth > 0 {
				depth--
				if depth == 0 {
					entries = append(entries, strings.TrimSpace(text.String()))
					if progress != nil {
						progress(len(entries))
					}
				}
			}
		case html.TextToken:
			if depth > 0 {
				text.Write(z.Text())
			}
		}
	}
}
