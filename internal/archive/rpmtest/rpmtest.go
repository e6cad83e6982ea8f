// Package rpmtest assembles small but well-formed RPM files for tests.
package rpmtest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hadespm/hades/internal/utils"
)

// Header tags and data types used by the builder
const (
	tagName              = 1000
	tagVersion           = 1001
	tagRelease           = 1002
	tagSummary           = 1004
	tagDescription       = 1005
	tagSize              = 1009
	tagGroup             = 1016
	tagArch              = 1022
	tagArchiveSize       = 1046
	tagRequireName       = 1049
	tagPayloadCompressor = 1125

	typeInt32       = 4
	typeString      = 6
	typeStringArray = 8
	typeI18NString  = 9

	headerMagic = 0x8eade801
)

// File is a regular file stored in the payload
type File struct {
	Path    string
	Content string
}

// Package describes the RPM to build. Empty string fields and zero sizes are
// left out of the header entirely.
type Package struct {
	Name        string
	Version     string
	Release     string
	Arch        string
	Group       string
	Summary     string
	Description string
	Size        int32
	ArchiveSize int32
	Requires    []string
	Files       []File
}

// Build returns the bytes of an RPM with an empty signature header and a
// gzip compressed cpio payload.
func Build(p Package) ([]byte, error) {
	var out bytes.Buffer

	// Lead: magic, v3.0, binary package, then padding up to 96 bytes
	lead := make([]byte, 96)
	copy(lead, []byte{0xED, 0xAB, 0xEE, 0xDB, 3, 0})
	copy(lead[10:], p.Name)
	out.Write(lead)

	var sig header
	if err := sig.writeTo(&out); err != nil {
		return nil, err
	}

	var gen header
	gen.addString(tagName, typeString, p.Name)
	gen.addString(tagVersion, typeString, p.Version)
	gen.addString(tagRelease, typeString, p.Release)
	gen.addString(tagSummary, typeI18NString, p.Summary)
	gen.addString(tagDescription, typeI18NString, p.Description)
	gen.addInt32(tagSize, p.Size)
	gen.addString(tagGroup, typeI18NString, p.Group)
	gen.addString(tagArch, typeString, p.Arch)
	gen.addInt32(tagArchiveSize, p.ArchiveSize)
	gen.addStrings(tagRequireName, p.Requires)
	gen.addString(tagPayloadCompressor, typeString, "gzip")
	if err := gen.writeTo(&out); err != nil {
		return nil, err
	}

	payload, err := utils.GzipCompress(cpioArchive(p.Files))
	if err != nil {
		return nil, err
	}
	out.Write(payload)

	return out.Bytes(), nil
}

// Write builds p and stores it as dir/name, returning the full path
func Write(tb testing.TB, dir, name string, p Package) string {
	tb.Helper()
	data, err := Build(p)
	if err != nil {
		tb.Fatalf("building rpm: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		tb.Fatalf("writing rpm: %v", err)
	}
	return path
}

type indexEntry struct {
	Tag, Type, Offset, Count int32
}

type header struct {
	entries []indexEntry
	store   bytes.Buffer
}

func (h *header) add(tag, typ, count int32, data []byte) {
	h.entries = append(h.entries, indexEntry{Tag: tag, Type: typ, Offset: int32(h.store.Len()), Count: count})
	h.store.Write(data)
}

func (h *header) addString(tag, typ int32, s string) {
	if s == "" {
		return
	}
	h.add(tag, typ, 1, append([]byte(s), 0))
}

func (h *header) addStrings(tag int32, vals []string) {
	if len(vals) == 0 {
		return
	}
	var data []byte
	for _, v := range vals {
		data = append(data, v...)
		data = append(data, 0)
	}
	h.add(tag, typeStringArray, int32(len(vals)), data)
}

func (h *header) addInt32(tag, v int32) {
	if v == 0 {
		return
	}
	for h.store.Len()%4 != 0 {
		h.store.WriteByte(0)
	}
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(v))
	h.add(tag, typeInt32, 1, data)
}

func (h *header) writeTo(out *bytes.Buffer) error {
	intro := [4]uint32{headerMagic, 0, uint32(len(h.entries)), uint32(h.store.Len())}
	if err := binary.Write(out, binary.BigEndian, intro); err != nil {
		return err
	}
	for _, e := range h.entries {
		if err := binary.Write(out, binary.BigEndian, e); err != nil {
			return err
		}
	}
	out.Write(h.store.Bytes())
	return nil
}

// cpioArchive lays out files in the "newc" format followed by the trailer
func cpioArchive(files []File) []byte {
	var buf bytes.Buffer
	for i, f := range files {
		writeCpioEntry(&buf, i+1, 0100644, f.Path, []byte(f.Content))
	}
	writeCpioEntry(&buf, 0, 0, "TRAILER!!!", nil)
	return buf.Bytes()
}

func writeCpioEntry(buf *bytes.Buffer, ino, mode int, name string, data []byte) {
	fmt.Fprintf(buf, "070701%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x%08x",
		ino, mode, 0, 0, 1, 0, len(data), 0, 0, 0, 0, len(name)+1, 0)
	buf.WriteString(name)
	buf.WriteByte(0)
	pad4(buf)
	buf.Write(data)
	pad4(buf)
}

func pad4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}
