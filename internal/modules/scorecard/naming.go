package scorecard

import (
	"path"
	"strings"
	"time"
)

const (
	// FilenameTimeLayout is the timestamp suffix of generated filenames.
	FilenameTimeLayout = "2006-01-02T15-04-05"

	DataPrefix             = "saved_scorecards/"
	MetadataPrefix         = "saved_scorecards/metadata/"
	ArchivedMetadataPrefix = "saved_scorecards/archived_metadata/"
)

// Slugify removes spaces, lowercases, then drops every character outside
// [a-zA-Z0-9 \n.].
func Slugify(name string) string {
	s := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '\n', r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewFilename derives the immutable storage key of a new scorecard.
func NewFilename(name string, now time.Time) string {
	return Slugify(name) + "_" + now.Format(FilenameTimeLayout)
}

func DataKey(filename string) string {
	return DataPrefix + filename + ".csv"
}

func MetadataKey(filename string) string {
	return MetadataPrefix + filename + ".json"
}

func ArchivedMetadataKey(filename string) string {
	return ArchivedMetadataPrefix + filename + ".json"
}

// validFilename rejects keys that would escape the scorecard namespace.
func validFilename(filename string) bool {
	if strings.TrimSpace(filename) == "" {
		return false
	}
	if strings.ContainsAny(filename, "/\\\x00") {
		return false
	}
	return filename != "." && filename != ".." && path.Clean(filename) == filename
}

// isArchivedKey reports whether any directory under the metadata prefix
// mentions "archived". The file name itself is not checked, so a scorecard
// named "Archived ideas" stays listed.
func isArchivedKey(key string) bool {
	dir := path.Dir(strings.TrimPrefix(key, MetadataPrefix))
	if dir == "." {
		return false
	}
	for _, seg := range strings.Split(dir, "/") {
		if strings.Contains(strings.ToLower(seg), "archived") {
			return true
		}
	}
	return false
}
