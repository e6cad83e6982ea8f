package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/utils"
	"github.com/sirupsen/logrus"
)

const chunkSize = 32 * 1024

// DownloadProgress is called after every chunk with the running byte count and
// the advertised total (-1 when the server sent no Content-Length).
type DownloadProgress func(written, total int64)

// DownloadResult describes a completed download
type DownloadResult struct {
	Path   string
	Bytes  int64
	SHA256 string
}

// Download streams url into dest. The response status is checked before dest
// is created, and dest is removed again if the transfer fails midway.
func Download(ctx context.Context, c *Client, url, dest string, progress DownloadProgress) (*DownloadResult, error) {
	logrus.Debugf("Downloading %s to %s", url, dest)

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, &models.HadesError{
			Type: models.ErrHTTP,
			Err:  fmt.Errorf("requesting %s: %w", url, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.HadesError{
			Type: models.ErrHTTP,
			Err:  fmt.Errorf("unexpected status %s for %s", resp.Status, url),
		}
	}

	// Content-Length is only used for progress reporting
	total := resp.ContentLength

	f, err := utils.CreateFile(dest)
	if err != nil {
		return nil, &models.HadesError{
			Type: models.ErrIO,
			Err:  fmt.Errorf("creating %s: %w", dest, err),
		}
	}

	digest := utils.NewDigest()
	copyErr := copyChunks(io.MultiWriter(f, digest), resp.Body, total, progress)
	closeErr := utils.CloseFile(f)

	if copyErr != nil || closeErr != nil {
		if err := utils.RemovePartial(dest); err != nil {
			logrus.Warnf("Failed to remove partial download %s: %v", dest, err)
		}
		if copyErr != nil {
			return nil, copyErr
		}
		return nil, &models.HadesError{
			Type: models.ErrIO,
			Err:  fmt.Errorf("closing %s: %w", dest, closeErr),
		}
	}

	result := &DownloadResult{
		Path:   dest,
		Bytes:  digest.Size(),
		SHA256: digest.SHA256(),
	}
	logrus.Debugf("Downloaded %d bytes, sha256 %s", result.Bytes, result.SHA256)
	return result, nil
}

// copyChunks copies src to dst, reporting progress after every chunk
func copyChunks(dst io.Writer, src io.Reader, total int64, progress DownloadProgress) error {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return &models.HadesError{
					Type: models.ErrIO,
					Err:  fmt.Errorf("writing download: %w", err),
				}
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return &models.HadesError{
				Type: models.ErrHTTP,
				Err:  fmt.Errorf("reading response body: %w", readErr),
			}
		}
	}
}
