package epoch

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const settingsFixture = `// Settings
#define VERSION_A 1
#define EPOCH 142
#define TICK 18600000
#define MAX_PEERS 30
`

func writeFixture(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "bobsync")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "public_settings.h")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("err: %v", err)
	}
	return path
}

func TestReadMarkers(t *testing.T) {
	path := writeFixture(t, settingsFixture)

	m, err := ReadMarkers(path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if m.Epoch != 142 {
		t.Fatalf("epoch should be 142, not %d", m.Epoch)
	}
	if m.Tick != 18600000 {
		t.Fatalf("tick should be 18600000, not %d", m.Tick)
	}
}

func TestParseMarkersMissing(t *testing.T) {
	if _, err := ParseMarkers([]byte("#define TICK 5\n")); err == nil {
		t.Fatalf("content without EPOCH should generate an error")
	}
	if _, err := ParseMarkers([]byte("#define EPOCH 5\n")); err == nil {
		t.Fatalf("content without TICK should generate an error")
	}
}

func TestPatchMarkers(t *testing.T) {
	path := writeFixture(t, settingsFixture)

	if err := PatchMarkers(path, Markers{Epoch: 143, Tick: 18750000}); err != nil {
		t.Fatalf("err: %v", err)
	}

	m, err := ReadMarkers(path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if m.Epoch != 143 || m.Tick != 18750000 {
		t.Fatalf("markers should be (143, 18750000), not (%d, %d)", m.Epoch, m.Tick)
	}

	// everything but the two markers is untouched
	content, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.Contains(string(content), "#define VERSION_A 1") ||
		!strings.Contains(string(content), "#define MAX_PEERS 30") {
		t.Fatalf("patch clobbered unrelated content:\n%s", content)
	}
}

func TestPatchMarkersNoMarkers(t *testing.T) {
	path := writeFixture(t, "int main() {}\n")

	if err := PatchMarkers(path, Markers{Epoch: 1, Tick: 2}); err == nil {
		t.Fatalf("patching a file without markers should generate an error")
	}
}
