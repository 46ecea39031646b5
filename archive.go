// ═══════════════════════════════════════════════════════════════════════════════
// ARCHIVE READER
// ═══════════════════════════════════════════════════════════════════════════════
// The corpus arrives as a ZIP archive of line-delimited JSON records. Each
// archive member whose name ends in ".json" is read line by line; a line
// that fails to parse, or parses but lacks url/content, is skipped with a
// warning rather than aborting the build.
// ═══════════════════════════════════════════════════════════════════════════════

package blaze

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Document is one (url, content) record recovered from an archive member,
// tagged with the member it came from so a file_id can be interned for it.
type Document struct {
	URL      string
	Content  string
	FileName string
}

// jsonRecord is the expected shape of one line within a ".json" archive
// member.
type jsonRecord struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// ArchiveReader streams documents out of a ZIP archive of line-delimited
// JSON members.
type ArchiveReader struct {
	zr *zip.ReadCloser
}

// OpenArchive opens path as a ZIP archive. It returns ErrBadArchive if the
// file is not a valid ZIP.
func OpenArchive(path string) (*ArchiveReader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	return &ArchiveReader{zr: zr}, nil
}

// Close releases the underlying ZIP file.
func (a *ArchiveReader) Close() error {
	return a.zr.Close()
}

// MemberNames returns the archive's ".json" member names in a stable,
// sorted order, so that document iteration order (and therefore doc_id
// assignment and duplicate-suppression order) is reproducible across runs
// over the same archive.
func (a *ArchiveReader) MemberNames() []string {
	var names []string
	for _, f := range a.zr.File {
		if strings.HasSuffix(f.Name, ".json") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Documents streams every valid (url, content) record from member, in
// file order. Invalid JSON lines and lines missing url or content are
// skipped with a warning; a failure to open the member itself is returned
// as an error.
func (a *ArchiveReader) Documents(member string) ([]Document, error) {
	var f *zip.File
	for _, candidate := range a.zr.File {
		if candidate.Name == member {
			f = candidate
			break
		}
	}
	if f == nil {
		return nil, fmt.Errorf("%w: member %q not found", ErrBadArchive, member)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening archive member %q: %w", member, err)
	}
	defer rc.Close()

	var docs []Document
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var rec jsonRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			slog.Warn("skipping invalid JSON record", slog.String("member", member), slog.Int("line", lineNum), slog.Any("error", err))
			continue
		}
		if rec.URL == "" || rec.Content == "" {
			slog.Warn("skipping record missing url or content", slog.String("member", member), slog.Int("line", lineNum))
			continue
		}
		docs = append(docs, Document{URL: rec.URL, Content: rec.Content, FileName: member})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading archive member %q: %w", member, err)
	}
	return docs, nil
}
