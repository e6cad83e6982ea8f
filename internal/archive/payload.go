package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/utils"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sassoftware/go-rpmutils/cpio"
	"github.com/sirupsen/logrus"
)

// openPayload opens the RPM at path and returns its decompressed cpio stream
func openPayload(path string) (io.ReadCloser, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &models.HadesError{Type: models.ErrIO, Package: path, Err: err}
	}

	hdr, err := readHeader(f, path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	compressor := getStringTag(hdr, rpmutils.PAYLOADCOMPRESSOR, "")
	logrus.Debugf("%s: payload compressor %q", path, compressor)

	pld, err := utils.NewDecompressor(f, compressor)
	if err != nil {
		f.Close()
		return nil, nil, &models.HadesError{
			Type:    models.ErrParse,
			Package: path,
			Err:     fmt.Errorf("opening payload: %w", err),
		}
	}

	cleanup := func() {
		pld.Close()
		f.Close()
	}
	return pld, cleanup, nil
}

// Files lists the paths stored in the package payload, in archive order
func Files(path string) ([]string, error) {
	pld, cleanup, err := openPayload(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var files []string
	stream := cpio.NewCpioStream(pld)
	for {
		entry, err := stream.ReadNextEntry()
		if err != nil {
			return nil, &models.HadesError{
				Type:    models.ErrParse,
				Package: path,
				Err:     fmt.Errorf("reading payload: %w", err),
			}
		}
		if entry.Header.Filename() == cpio.TRAILER {
			return files, nil
		}
		files = append(files, entry.Header.Filename())
	}
}

// ExtractPayload unpacks the package payload under dest without external tools
func ExtractPayload(path, dest string) error {
	pld, cleanup, err := openPayload(path)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := utils.EnsureDir(dest); err != nil {
		return &models.HadesError{Type: models.ErrIO, Package: path, Err: err}
	}

	logrus.Debugf("Extracting %s into %s", path, dest)
	if err := cpio.Extract(pld, dest); err != nil {
		return &models.HadesError{
			Type:    models.ErrInstall,
			Package: path,
			Err:     fmt.Errorf("expanding payload: %w", err),
		}
	}
	return nil
}
