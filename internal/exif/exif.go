// Package exif reads the EXIF tags of a camera file into a Record, keyed by
// IFD name and tag id, leaving value interpretation to the caller.
package exif

import (
	"fmt"
	"os"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// IFD names used as Record namespaces.
const (
	IFD0    = "0th"
	IFD1    = "1st"
	ExifIFD = "Exif"
	GPSIFD  = "GPS"
	Interop = "Interop"
)

// Tag ids the renamer depends on.
const (
	TagModel            uint16 = 0x0110
	TagDateTimeOriginal uint16 = 0x9003

	tagExifPointer    uint16 = 0x8769
	tagGPSPointer     uint16 = 0x8825
	tagInteropPointer uint16 = 0xa005
	tagCopyright      uint16 = 0x8298
)

// Record maps IFD name to tag id to the raw tag bytes.
type Record map[string]map[uint16][]byte

// Get returns the raw bytes of a tag, and whether it was present.
func (r Record) Get(ifd string, id uint16) ([]byte, bool) {
	tags, ok := r[ifd]
	if !ok {
		return nil, false
	}
	v, ok := tags[id]
	return v, ok
}

func (r Record) set(ifd string, id uint16, val []byte) {
	tags, ok := r[ifd]
	if !ok {
		tags = make(map[uint16][]byte)
		r[ifd] = tags
	}
	tags[id] = val
}

// UnreadableError reports a file whose EXIF data cannot be decoded.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable EXIF data in %v: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Reader loads the EXIF record of a file.
type Reader interface {
	Read(path string) (Record, error)
}

// FileReader decodes EXIF data from TIFF-based raw files and JPEGs.
type FileReader struct{}

func (FileReader) Read(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}
	defer f.Close()

	x, err := goexif.Decode(f)
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return nil, &UnreadableError{Path: path, Err: err}
	}

	rec := make(Record)
	w := walker(func(name goexif.FieldName, tag *tiff.Tag) error {
		val := make([]byte, len(tag.Val))
		copy(val, tag.Val)
		rec.set(ifdOf(name, tag.Id), tag.Id, val)
		return nil
	})
	if err := x.Walk(w); err != nil {
		return nil, &UnreadableError{Path: path, Err: err}
	}

	return rec, nil
}

type walker func(goexif.FieldName, *tiff.Tag) error

func (w walker) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	return w(name, tag)
}

// ifdOf places a decoded field back into the IFD it was read from. goexif
// flattens all directories into one field map, so the namespace is recovered
// from the field name and the tag id ranges of the EXIF standard.
func ifdOf(name goexif.FieldName, id uint16) string {
	n := string(name)
	switch {
	case id == tagExifPointer || id == tagGPSPointer:
		return IFD0
	case id == tagInteropPointer:
		return ExifIFD
	case strings.HasPrefix(n, "Thumb"):
		return IFD1
	case strings.HasPrefix(n, "GPS"):
		return GPSIFD
	case strings.HasPrefix(n, "Interoperability"):
		return Interop
	case id < 0x8000 || id == tagCopyright:
		return IFD0
	default:
		return ExifIFD
	}
}
