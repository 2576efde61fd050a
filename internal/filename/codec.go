// Package filename encodes dump metadata into file names and decodes it back.
//
//	250825-143022-development-local.sql       timestamped export
//	250825-143022-development-local-BAK.sql   backup taken before importing it
//	250825-development-local.sql              legacy name without a time part
//
// A trailing ".zst" marks a zstd-compressed dump.
//
// Names are lower-cased when encoded, so decoded labels are title-cased per
// word and do not keep the original casing: a preset named "WooCommerce"
// decodes as "Woocommerce". The environment is always the last
// hyphen-separated segment and is reduced to one word when encoded.
package filename

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Ext is the extension of every dump file.
	Ext = ".sql"
	// CompressedExt is appended to Ext for zstd-compressed dumps.
	CompressedExt = ".zst"
	// BackupSuffix is inserted before Ext for backup files.
	BackupSuffix = "-BAK"

	dateLayout = "060102"
	timeLayout = "150405"

	// Unknown is reported for every field of a name that matches no layout.
	Unknown = "Unknown"
)

// Layout identifies which naming scheme a file name follows.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutTimestamped
	LayoutLegacy
)

func (l Layout) String() string {
	switch l {
	case LayoutTimestamped:
		return "timestamped"
	case LayoutLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Info is the metadata carried by a dump file name.
type Info struct {
	Layout      Layout
	Date        string // YYMMDD
	Time        string // HHMMSS, "000000" for legacy names
	Timestamp   string // Date + "-" + Time
	Preset      string // title-cased, e.g. "Content Only"
	Environment string // title-cased, e.g. "Local"
	IsBackup    bool
	Compressed  bool
}

// When parses the timestamp in the local time zone. ok is false for names
// without a usable timestamp.
func (i Info) When() (t time.Time, ok bool) {
	if i.Layout == LayoutUnknown {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout+"-"+timeLayout, i.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// Slug lower-cases a label and turns spaces into hyphens.
func Slug(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), "-"))
}

// Label is the inverse of Slug: hyphens become spaces and words are
// title-cased.
func Label(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// EnvironmentLabel reduces an environment name to the single segment Decode
// reads back: spaces and hyphens are dropped, "staging server" becomes
// "Stagingserver". It returns "" if nothing is left.
func EnvironmentLabel(environment string) string {
	word := strings.Join(strings.FieldsFunc(environment, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	}), "")
	if word == "" {
		return ""
	}
	return Label(Slug(word))
}

// Encode builds the file name for a dump taken at ts.
func Encode(ts time.Time, preset, environment string, backup bool) string {
	var b strings.Builder
	b.WriteString(ts.Format(dateLayout + "-" + timeLayout))
	b.WriteByte('-')
	b.WriteString(Slug(preset))
	b.WriteByte('-')
	b.WriteString(Slug(EnvironmentLabel(environment)))
	if backup {
		b.WriteString(BackupSuffix)
	}
	b.WriteString(Ext)
	return b.String()
}

// Compress returns name with the compressed extension appended.
func Compress(name string) string {
	if strings.HasSuffix(name, CompressedExt) {
		return name
	}
	return name + CompressedExt
}

// BackupName derives the backup file name for an import file name by
// replacing ".sql" with "-BAK.sql". The same import always maps to the same
// backup name.
func BackupName(importName string) string {
	for _, ext := range []string{Ext + CompressedExt, Ext} {
		if base, ok := strings.CutSuffix(importName, ext); ok {
			return base + BackupSuffix + ext
		}
	}
	return importName + BackupSuffix + Ext
}

// HasBackupSuffix reports whether name ends in -BAK.sql or -BAK.sql.zst,
// whether or not the rest of the name decodes.
func HasBackupSuffix(name string) bool {
	name = strings.TrimSuffix(name, CompressedExt)
	return strings.HasSuffix(name, BackupSuffix+Ext)
}

// IsDump reports whether name carries a dump extension.
func IsDump(name string) bool {
	return strings.HasSuffix(name, Ext) || strings.HasSuffix(name, Ext+CompressedExt)
}

// Decode extracts metadata from a file name. It never fails: names that
// match neither layout produce the Unknown record.
func Decode(name string) Info {
	info := Info{}
	base := name
	if strings.HasSuffix(base, CompressedExt) {
		base = strings.TrimSuffix(base, CompressedExt)
		info.Compressed = true
	}
	if !strings.HasSuffix(base, Ext) {
		return unknown(info.Compressed)
	}
	base = strings.TrimSuffix(base, Ext)
	if strings.HasSuffix(base, BackupSuffix) {
		base = strings.TrimSuffix(base, BackupSuffix)
		info.IsBackup = true
	}

	parts := strings.Split(base, "-")
	for _, p := range parts {
		if p == "" {
			return unknown(info.Compressed)
		}
	}

	switch {
	case len(parts) >= 4 && sixDigits.MatchString(parts[0]) && sixDigits.MatchString(parts[1]):
		info.Layout = LayoutTimestamped
		info.Date = parts[0]
		info.Time = parts[1]
		info.Preset = Label(strings.Join(parts[2:len(parts)-1], "-"))
	case len(parts) >= 3 && sixDigits.MatchString(parts[0]):
		info.Layout = LayoutLegacy
		info.Date = parts[0]
		info.Time = "000000"
		info.Preset = Label(strings.Join(parts[1:len(parts)-1], "-"))
	default:
		return unknown(info.Compressed)
	}

	info.Timestamp = info.Date + "-" + info.Time
	info.Environment = Label(parts[len(parts)-1])
	return info
}

func unknown(compressed bool) Info {
	return Info{
		Layout:      LayoutUnknown,
		Date:        Unknown,
		Time:        Unknown,
		Timestamp:   Unknown,
		Preset:      Unknown,
		Environment: Unknown,
		Compressed:  compressed,
	}
}
