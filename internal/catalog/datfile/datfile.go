// Package datfile parses logiqx-style DAT files into catalog entries.
//
// A DAT file is an XML document with a header naming the console and one
// game element per release, each listing its rom files with size and
// crc/md5/sha1 attributes. This is the only place that knows about the
// on-disk catalog format; the rest of the system consumes catalog.Entry.
package datfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"romrenamer/internal/catalog"
	"romrenamer/internal/digest"
	"romrenamer/internal/report"
)

type datafile struct {
	XMLName xml.Name  `xml:"datafile"`
	Header  datHeader `xml:"header"`
	Games   []datGame `xml:"game"`
}

type datHeader struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
}

type datGame struct {
	Name string   `xml:"name,attr"`
	ROMs []datROM `xml:"rom"`
}

type datROM struct {
	Name string `xml:"name,attr"`
	Size string `xml:"size,attr"`
	CRC  string `xml:"crc,attr"`
	MD5  string `xml:"md5,attr"`
	SHA1 string `xml:"sha1,attr"`
}

// Parse decodes one DAT document. The header name identifies the console
// for every game in the file.
func Parse(r io.Reader) ([]catalog.Entry, error) {
	var doc datafile
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dat: %w", err)
	}

	console := strings.TrimSpace(doc.Header.Name)
	if console == "" {
		return nil, fmt.Errorf("dat header has no console name")
	}

	entries := make([]catalog.Entry, 0, len(doc.Games))
	for _, game := range doc.Games {
		entry := catalog.Entry{
			Console: console,
			Name:    strings.TrimSpace(game.Name),
			Members: make([]catalog.Member, 0, len(game.ROMs)),
		}
		for i, rom := range game.ROMs {
			size, err := strconv.ParseInt(strings.TrimSpace(rom.Size), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("game %q rom %q: bad size %q", game.Name, rom.Name, rom.Size)
			}
			member := catalog.Member{
				Name:    strings.TrimSpace(rom.Name),
				Size:    size,
				Index:   i,
				Digests: map[digest.Algorithm]string{},
			}
			for algo, value := range map[digest.Algorithm]string{
				digest.CRC32: rom.CRC,
				digest.MD5:   rom.MD5,
				digest.SHA1:  rom.SHA1,
			} {
				value = strings.ToLower(strings.TrimSpace(value))
				if value != "" {
					member.Digests[algo] = value
				}
			}
			entry.Members = append(entry.Members, member)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseFile decodes the DAT file at path.
func ParseFile(path string) ([]catalog.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dat %s: %w", path, err)
	}
	defer file.Close()
	return Parse(file)
}

// LoadDir parses every non-hidden regular file in dir, concatenating their
// entries. Per-file parse failures are recorded on rep and skipped; only a
// missing or unreadable directory is an error.
func LoadDir(dir string, rep *report.Report) ([]catalog.Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var entries []catalog.Entry
	for _, name := range names {
		path := filepath.Join(dir, name)
		parsed, err := ParseFile(path)
		if err != nil {
			rep.Record(report.ProblemCatalogCorrupt, path, err.Error())
			continue
		}
		entries = append(entries, parsed...)
	}
	return entries, nil
}
