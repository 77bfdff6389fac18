package naming

import (
	"errors"
	"testing"

	"github.com/fedragon/rawrename/internal/exif"
)

func record(ts, model string) exif.Record {
	rec := exif.Record{}
	if ts != "" {
		rec[exif.ExifIFD] = map[uint16][]byte{exif.TagDateTimeOriginal: []byte(ts)}
	}
	if model != "" {
		rec[exif.IFD0] = map[uint16][]byte{exif.TagModel: []byte(model)}
	}
	return rec
}

func TestDeriveBaseName(t *testing.T) {
	cases := []struct {
		name     string
		rec      exif.Record
		expected string
	}{
		{
			name:     "aliased model",
			rec:      record("2023:05:01 12:30:00\x00", "Canon EOS R6\x00"),
			expected: "20230501_123000_canonr6",
		},
		{
			name:     "unknown model is lowercased with spaces removed",
			rec:      record("2023:05:01 12:30:00\x00", "Canon EOS 90D\x00"),
			expected: "20230501_123000_canoneos90d",
		},
		{
			name:     "alias lookup ignores case",
			rec:      record("2023:05:01 12:30:00", "GALAXY S23"),
			expected: "20230501_123000_galaxys23",
		},
		{
			name:     "legacy rebel alias",
			rec:      record("2024:01:15 09:00:00\x00", "Canon EOS REBEL T2i\x00"),
			expected: "20240115_090000_canont2i",
		},
		{
			name:     "punctuation other than spaces is kept",
			rec:      record("2024:01:15 09:00:00", "ILCE-7M3 (II)"),
			expected: "20240115_090000_ilce-7m3(ii)",
		},
		{
			name:     "impossible dates pass through",
			rec:      record("2024:13:45 25:61:00", "Canon EOS R6"),
			expected: "20241345_256100_canonr6",
		},
		{
			name:     "padding around the value is dropped",
			rec:      record("  2024:01:15 09:00:00 \x00\x00", " Canon EOS R6 \x00"),
			expected: "20240115_090000_canonr6",
		},
	}

	for _, c := range cases {
		got, err := DeriveBaseName(c.rec, DefaultAliases())
		if err != nil {
			t.Errorf("%v\n\tUnexpected error: %v", c.name, err)
			continue
		}
		if got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
		}
	}
}

func TestDeriveBaseNameErrors(t *testing.T) {
	cases := []struct {
		name      string
		rec       exif.Record
		field     Field
		malformed bool
	}{
		{
			name:  "missing timestamp",
			rec:   record("", "Canon EOS R6"),
			field: DateTimeOriginal,
		},
		{
			name:  "missing model",
			rec:   record("2023:05:01 12:30:00", ""),
			field: Model,
		},
		{
			name:      "timestamp is not UTF-8",
			rec:       record("\xff\xfe\xfd", "Canon EOS R6"),
			field:     DateTimeOriginal,
			malformed: true,
		},
		{
			name:      "model is only padding",
			rec:       record("2023:05:01 12:30:00", "   \x00"),
			field:     Model,
			malformed: true,
		},
		{
			name:      "model with a path separator",
			rec:       record("2023:05:01 12:30:00", "Foo/Bar"),
			field:     Model,
			malformed: true,
		},
	}

	for _, c := range cases {
		_, err := DeriveBaseName(c.rec, DefaultAliases())

		var missing *MissingFieldError
		var malformed *MalformedFieldError
		switch {
		case c.malformed && errors.As(err, &malformed):
			if malformed.Field != c.field {
				t.Errorf("%v\n\tExpected field %v but got %v instead", c.name, c.field.Name, malformed.Field.Name)
			}
		case !c.malformed && errors.As(err, &missing):
			if missing.Field != c.field {
				t.Errorf("%v\n\tExpected field %v but got %v instead", c.name, c.field.Name, missing.Field.Name)
			}
		default:
			t.Errorf("%v\n\tUnexpected error: %v", c.name, err)
		}
	}
}

func TestAliasTable(t *testing.T) {
	aliases := DefaultAliases().With(map[string]string{
		"NIKON Z 6_2":  "z6ii",
		"Canon EOS R6": "r6",
	})

	cases := []struct {
		model    string
		expected string
	}{
		{model: "nikon z 6_2", expected: "z6ii"},
		{model: "canon eos r6", expected: "r6"},
		{model: "galaxy s23", expected: "galaxys23"},
		{model: "Pixel 8 Pro", expected: "pixel8pro"},
	}

	for _, c := range cases {
		if got := aliases.NormalizeModel(c.model); got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.model, c.expected, got)
		}
	}

	if got, _ := DefaultAliases().Lookup("Canon EOS R6"); got != "canonr6" {
		t.Errorf("With must not change the table it was called on, got %v", got)
	}
}

func TestTimestampValid(t *testing.T) {
	cases := []struct {
		ts       string
		expected bool
	}{
		{ts: "2023:05:01 12:30:00", expected: true},
		{ts: "2023:13:01 12:30:00", expected: false},
		{ts: "0000:00:00 00:00:00", expected: false},
		{ts: "yesterday", expected: false},
	}

	for _, c := range cases {
		if got := TimestampValid(c.ts); got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.ts, c.expected, got)
		}
	}
}
