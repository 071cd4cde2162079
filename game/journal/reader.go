package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Read returns the entries of one journal file. A file whose writer did not
// close cleanly ends in a partial frame; everything before it is returned.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var entries []Entry
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			// only the final line may be torn
			if !sc.Scan() {
				break
			}
			return entries, fmt.Errorf("%s: entry %d: %w", filepath.Base(path), len(entries)+1, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return entries, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// SessionFiles lists the journal files of a session, oldest run first
func SessionFiles(dir, sessionID string) ([]string, error) {
	ents, err := os.ReadDir(filepath.Join(dir, sessionID))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
			out = append(out, filepath.Join(dir, sessionID, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
