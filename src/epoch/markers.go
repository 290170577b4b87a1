package epoch

import (
	"fmt"
	"io/ioutil"
	"os"
	"regexp"
	"strconv"
)

// Markers holds the working tree's embedded version markers. EPOCH and TICK
// are compile-time constants in the node source; the commit history always
// updates them together.
type Markers struct {
	Epoch uint32
	Tick  uint32
}

var (
	epochPattern = regexp.MustCompile(`(#define\s+EPOCH\s+)([0-9]+)`)
	tickPattern  = regexp.MustCompile(`(#define\s+TICK\s+)([0-9]+)`)
)

// ParseMarkers extracts the EPOCH and TICK markers from the content of a
// version-indicator file.
func ParseMarkers(content []byte) (Markers, error) {
	var m Markers

	em := epochPattern.FindSubmatch(content)
	if em == nil {
		return m, fmt.Errorf("no EPOCH marker found")
	}
	tm := tickPattern.FindSubmatch(content)
	if tm == nil {
		return m, fmt.Errorf("no TICK marker found")
	}

	epoch, err := strconv.ParseUint(string(em[2]), 10, 32)
	if err != nil {
		return m, err
	}
	tick, err := strconv.ParseUint(string(tm[2]), 10, 32)
	if err != nil {
		return m, err
	}

	m.Epoch = uint32(epoch)
	m.Tick = uint32(tick)

	return m, nil
}

// ReadMarkers reads the markers from the version-indicator file at path.
func ReadMarkers(path string) (Markers, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return Markers{}, err
	}
	return ParseMarkers(content)
}

// PatchMarkers rewrites only the EPOCH and TICK values in the file at path,
// leaving every other byte untouched. File permissions are preserved.
func PatchMarkers(path string, m Markers) error {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	if epochPattern.FindSubmatch(content) == nil || tickPattern.FindSubmatch(content) == nil {
		return fmt.Errorf("%s carries no EPOCH/TICK markers", path)
	}

	content = epochPattern.ReplaceAll(content,
		[]byte("${1}"+strconv.FormatUint(uint64(m.Epoch), 10)))
	content = tickPattern.ReplaceAll(content,
		[]byte("${1}"+strconv.FormatUint(uint64(m.Tick), 10)))

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(path, content, info.Mode())
}
