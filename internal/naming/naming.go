// Package naming derives the canonical base name of a raw file from its
// EXIF capture timestamp and camera model.
package naming

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fedragon/rawrename/internal/exif"
)

const timestampLayout = "2006:01:02 15:04:05"

// Field identifies an EXIF tag used in the base name.
type Field struct {
	Name string
	IFD  string
	ID   uint16
}

var (
	DateTimeOriginal = Field{Name: "DateTimeOriginal", IFD: exif.ExifIFD, ID: exif.TagDateTimeOriginal}
	Model            = Field{Name: "Model", IFD: exif.IFD0, ID: exif.TagModel}
)

// MissingFieldError reports a required tag absent from the record.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing EXIF field %v (%v/%#04x)", e.Field.Name, e.Field.IFD, e.Field.ID)
}

// MalformedFieldError reports a tag whose value is not usable text.
type MalformedFieldError struct {
	Field  Field
	Reason string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed EXIF field %v: %v", e.Field.Name, e.Reason)
}

// DeriveBaseName returns "<YYYYMMDD_HHMMSS>_<model>" for rec. The timestamp is
// not validated: whatever the camera wrote flows into the name with the space
// replaced by an underscore and colons removed.
func DeriveBaseName(rec exif.Record, aliases AliasTable) (string, error) {
	ts, err := Text(rec, DateTimeOriginal)
	if err != nil {
		return "", err
	}
	model, err := Text(rec, Model)
	if err != nil {
		return "", err
	}

	return TimestampToken(ts) + "_" + aliases.NormalizeModel(model), nil
}

// Text decodes the raw bytes of f as UTF-8 text, dropping NUL terminators and
// surrounding whitespace.
func Text(rec exif.Record, f Field) (string, error) {
	raw, ok := rec.Get(f.IFD, f.ID)
	if !ok {
		return "", &MissingFieldError{Field: f}
	}
	if !utf8.Valid(raw) {
		return "", &MalformedFieldError{Field: f, Reason: "not valid UTF-8"}
	}

	s := strings.TrimSpace(strings.TrimRight(string(raw), "\x00"))
	if s == "" {
		return "", &MalformedFieldError{Field: f, Reason: "empty value"}
	}
	if strings.ContainsRune(s, 0) {
		return "", &MalformedFieldError{Field: f, Reason: "embedded NUL"}
	}
	if strings.ContainsAny(s, `/\`) {
		return "", &MalformedFieldError{Field: f, Reason: "contains a path separator"}
	}
	return s, nil
}

// TimestampToken turns "YYYY:MM:DD HH:MM:SS" into "YYYYMMDD_HHMMSS".
func TimestampToken(ts string) string {
	return strings.ReplaceAll(strings.ReplaceAll(ts, " ", "_"), ":", "")
}

// TimestampValid reports whether ts is a real calendar timestamp.
func TimestampValid(ts string) bool {
	_, err := time.Parse(timestampLayout, ts)
	return err == nil
}
