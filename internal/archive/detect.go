package archive

import (
	"bytes"
	"io"
)

// RPM packages start with 0xED 0xAB 0xEE 0xDB
var rpmMagic = []byte{0xED, 0xAB, 0xEE, 0xDB}

// hasRPMMagic reads the first bytes of r and reports whether they carry the RPM lead magic
func hasRPMMagic(r io.Reader) (bool, error) {
	header := make([]byte, len(rpmMagic))
	n, err := io.ReadFull(r, header)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return bytes.Equal(header[:n], rpmMagic), nil
}
