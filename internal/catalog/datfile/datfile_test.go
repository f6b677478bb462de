package datfile_test

import (
	"path/filepath"
	"strings"
	"testing"

	"romrenamer/internal/catalog/datfile"
	"romrenamer/internal/digest"
	"romrenamer/internal/report"
	"romrenamer/internal/testsupport"
)

const sampleDAT = `<?xml version="1.0"?>
<datafile>
  <header>
    <name>Sony PlayStation</name>
    <description>Sony PlayStation - Discs</description>
    <version>2021-01-01</version>
  </header>
  <game name="Example Game (Europe)">
    <rom name="Example Game (Europe).cue" size="120" crc="ABCD1234" md5="0123456789abcdef0123456789abcdef" sha1="0123456789abcdef0123456789abcdef01234567"/>
    <rom name="Example Game (Europe) (Track 1).bin" size="650000" crc="deadbeef" md5="fedcba9876543210fedcba9876543210" sha1="76543210fedcba9876543210fedcba9876543210"/>
  </game>
  <game name="Other Game (USA)">
    <rom name="Other Game (USA).bin" size="42" crc="00000042" md5="42424242424242424242424242424242" sha1="4242424242424242424242424242424242424242"/>
  </game>
</datafile>`

func TestParse(t *testing.T) {
	entries, err := datfile.Parse(strings.NewReader(sampleDAT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	game := entries[0]
	if game.Console != "Sony PlayStation" {
		t.Errorf("console = %q", game.Console)
	}
	if game.Name != "Example Game (Europe)" {
		t.Errorf("name = %q", game.Name)
	}
	if len(game.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(game.Members))
	}

	cue := game.Members[0]
	if cue.Size != 120 || cue.Index != 0 {
		t.Errorf("cue member = %+v", cue)
	}
	if crc, _ := cue.Digest(digest.CRC32); crc != "abcd1234" {
		t.Errorf("crc not lowercased: %q", crc)
	}
	if track := game.Members[1]; track.Index != 1 || track.Size != 650000 {
		t.Errorf("track member = %+v", track)
	}
}

func TestParseRejectsMissingConsole(t *testing.T) {
	const headerless = `<datafile><header><name>  </name></header><game name="G"/></datafile>`
	if _, err := datfile.Parse(strings.NewReader(headerless)); err == nil {
		t.Fatal("expected error for missing console name")
	}
}

func TestParseRejectsBadSize(t *testing.T) {
	const badSize = `<datafile><header><name>NES</name></header>
<game name="G"><rom name="g.nes" size="lots" crc="00000000"/></game></datafile>`
	if _, err := datfile.Parse(strings.NewReader(badSize)); err == nil {
		t.Fatal("expected error for unparseable size")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "psx.dat"), []byte(sampleDAT))
	testsupport.WriteFile(t, filepath.Join(dir, "broken.dat"), []byte("not xml at all"))
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden.dat"), []byte(sampleDAT))

	rep := report.New()
	entries, err := datfile.LoadDir(dir, rep)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (hidden file must be skipped)", len(entries))
	}

	problems := rep.Problems()
	if len(problems) != 1 || problems[0].Kind != report.ProblemCatalogCorrupt {
		t.Fatalf("expected one catalog_corrupt problem for the broken file, got %v", problems)
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := datfile.LoadDir(filepath.Join(t.TempDir(), "absent"), report.New()); err == nil {
		t.Fatal("expected error for missing catalog directory")
	}
}
