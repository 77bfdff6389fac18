// Package exiftest builds minimal TIFF files carrying EXIF tags, for tests
// that need real files on disk.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

const (
	typeASCII = 2
	typeLong  = 4
)

type entry struct {
	id    uint16
	typ   uint16
	count uint32
	value []byte
}

// TIFF encodes a little-endian TIFF whose IFD0 carries model and whose Exif
// sub-IFD carries dateTimeOriginal. Empty values are left out.
func TIFF(model, dateTimeOriginal string) []byte {
	var ifd0, sub []entry
	if model != "" {
		ifd0 = append(ifd0, ascii(0x0110, model))
	}
	if dateTimeOriginal != "" {
		sub = append(sub, ascii(0x9003, dateTimeOriginal))
		ifd0 = append(ifd0, entry{id: 0x8769, typ: typeLong, count: 1})
	}

	ifd0Off := uint32(8)
	subOff := ifd0Off + ifdSize(ifd0)
	dataOff := subOff
	if len(sub) > 0 {
		dataOff += ifdSize(sub)
	}

	var data bytes.Buffer
	place := func(es []entry) []uint32 {
		vals := make([]uint32, len(es))
		for i, e := range es {
			switch {
			case e.id == 0x8769:
				vals[i] = subOff
			case len(e.value) > 4:
				vals[i] = dataOff + uint32(data.Len())
				data.Write(e.value)
			default:
				var b [4]byte
				copy(b[:], e.value)
				vals[i] = binary.LittleEndian.Uint32(b[:])
			}
		}
		return vals
	}
	ifd0Vals := place(ifd0)
	subVals := place(sub)

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, binary.LittleEndian, uint16(42))
	_ = binary.Write(&out, binary.LittleEndian, ifd0Off)
	writeIFD(&out, ifd0, ifd0Vals)
	if len(sub) > 0 {
		writeIFD(&out, sub, subVals)
	}
	out.Write(data.Bytes())

	return out.Bytes()
}

// WriteFile writes a TIFF built by TIFF to path, failing the test on error.
func WriteFile(t testing.TB, path, model, dateTimeOriginal string) {
	t.Helper()
	if err := os.WriteFile(path, TIFF(model, dateTimeOriginal), 0o644); err != nil {
		t.Fatalf(err.Error())
	}
}

func ascii(id uint16, s string) entry {
	v := append([]byte(s), 0)
	return entry{id: id, typ: typeASCII, count: uint32(len(v)), value: v}
}

func ifdSize(es []entry) uint32 {
	return 2 + 12*uint32(len(es)) + 4
}

func writeIFD(out *bytes.Buffer, es []entry, vals []uint32) {
	_ = binary.Write(out, binary.LittleEndian, uint16(len(es)))
	for i, e := range es {
		_ = binary.Write(out, binary.LittleEndian, e.id)
		_ = binary.Write(out, binary.LittleEndian, e.typ)
		_ = binary.Write(out, binary.LittleEndian, e.count)
		_ = binary.Write(out, binary.LittleEndian, vals[i])
	}
	_ = binary.Write(out, binary.LittleEndian, uint32(0))
}
