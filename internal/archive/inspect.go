package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hadespm/hades/internal/models"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sirupsen/logrus"
)

// Inspect opens the RPM at path and extracts its header metadata.
// A malformed header or a missing name is reported as a parse error.
func Inspect(path string) (*models.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.HadesError{Type: models.ErrIO, Package: path, Err: err}
	}
	defer f.Close()

	hdr, err := readHeader(f, path)
	if err != nil {
		return nil, err
	}

	name, err := hdr.GetString(rpmutils.NAME)
	if err != nil || name == "" {
		return nil, &models.HadesError{
			Type:    models.ErrParse,
			Package: path,
			Err:     fmt.Errorf("header has no package name"),
		}
	}

	meta := &models.Metadata{
		Name:              name,
		Version:           getStringTag(hdr, rpmutils.VERSION, ""),
		Release:           getStringTag(hdr, rpmutils.RELEASE, ""),
		Arch:              getStringTag(hdr, rpmutils.ARCH, models.DefaultArch),
		Group:             getStringTag(hdr, rpmutils.GROUP, models.DefaultGroup),
		Summary:           getStringTag(hdr, rpmutils.SUMMARY, ""),
		Description:       getStringTag(hdr, rpmutils.DESCRIPTION, ""),
		PayloadCompressor: getStringTag(hdr, rpmutils.PAYLOADCOMPRESSOR, ""),
		Requires:          getStringSliceTag(hdr, rpmutils.REQUIRENAME),
	}

	if size, err := hdr.InstalledSize(); err == nil {
		meta.Size = size
	} else {
		logrus.Debugf("%s: no installed size in header: %v", path, err)
	}
	meta.ArchiveSize = archiveSize(hdr, path)

	return meta, nil
}

// readHeader checks the lead magic and decodes the signature and general headers.
// On success r is positioned at the start of the compressed payload.
func readHeader(r io.ReadSeeker, path string) (*rpmutils.RpmHeader, error) {
	ok, err := hasRPMMagic(r)
	if err != nil {
		return nil, &models.HadesError{Type: models.ErrIO, Package: path, Err: err}
	}
	if !ok {
		return nil, &models.HadesError{
			Type:    models.ErrParse,
			Package: path,
			Err:     fmt.Errorf("file is not an RPM"),
		}
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, &models.HadesError{Type: models.ErrIO, Package: path, Err: err}
	}

	hdr, err := rpmutils.ReadHeader(r)
	if err != nil {
		return nil, &models.HadesError{
			Type:    models.ErrParse,
			Package: path,
			Err:     fmt.Errorf("failed to read RPM header: %w", err),
		}
	}
	return hdr, nil
}

// getStringTag returns the first value of a string tag, or def if it is absent or empty
func getStringTag(hdr *rpmutils.RpmHeader, tag int, def string) string {
	vals, err := hdr.GetStrings(tag)
	if err != nil {
		var missing rpmutils.NoSuchTagError
		if !errors.As(err, &missing) {
			logrus.Debugf("Unreadable header tag %d: %v", tag, err)
		}
		return def
	}
	if len(vals) == 0 || vals[0] == "" {
		return def
	}
	return vals[0]
}

// getStringSliceTag returns the non-empty values of a string array tag
func getStringSliceTag(hdr *rpmutils.RpmHeader, tag int) []string {
	vals, err := hdr.GetStrings(tag)
	if err != nil {
		return nil
	}
	var result []string
	for _, s := range vals {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// archiveSize reads ARCHIVESIZE from the general header, falling back to the
// payload size recorded in the signature header
func archiveSize(hdr *rpmutils.RpmHeader, path string) int64 {
	if vals, err := hdr.GetUint64s(rpmutils.ARCHIVESIZE); err == nil && len(vals) == 1 {
		return int64(vals[0])
	}
	if size, err := hdr.PayloadSize(); err == nil {
		return size
	}
	logrus.Debugf("%s: no archive size in header", path)
	return 0
}
