package slavelink

import (
	"os"
	"path/filepath"
	"testing"
)

// TestReadListingUTF8: без метки кодировки файл читается как есть,
// CR и хвостовые пустые строки отбрасываются.
func TestReadListingUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.bas")
	if err := os.WriteFile(path, []byte("10 CLS\r\n20 END\r\n\r\n\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadListing(path, "")
	if err != nil {
		t.Fatalf("ReadListing: %v", err)
	}
	if len(lines) != 2 || lines[0] != "10 CLS" || lines[1] != "20 END" {
		t.Errorf("строки %q", lines)
	}
}

// TestReadListingLegacyEncoding: однобайтовая кодировка декодируется по метке.
func TestReadListingLegacyEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.bas")
	// 0xE9 в windows-1252 — 'é'.
	if err := os.WriteFile(path, []byte{'R', 'E', 'M', ' ', 0xE9, '\n'}, 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadListing(path, "windows-1252")
	if err != nil {
		t.Fatalf("ReadListing: %v", err)
	}
	if len(lines) != 1 || lines[0] != "REM é" {
		t.Errorf("строки %q, ожидалась одна строка %q", lines, "REM é")
	}
}

// TestReadListingUnknownEncoding: неизвестная метка — ошибка.
func TestReadListingUnknownEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.bas")
	if err := os.WriteFile(path, []byte("10 CLS\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadListing(path, "no-such-charset"); err == nil {
		t.Fatal("ожидалась ошибка для неизвестной кодировки")
	}
}
