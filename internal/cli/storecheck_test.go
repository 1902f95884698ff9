package cli

import (
	"strings"
	"testing"
)

func TestMaskDSN(t *testing.T) {
	masked := maskDSN("postgres://news:secret@db:5432/newsflash?sslmode=disable")
	if strings.Contains(masked, "secret") {
		t.Errorf("password leaked: %s", masked)
	}
	if !strings.HasPrefix(masked, "postgres://news:") || !strings.HasSuffix(masked, "@db:5432/newsflash?sslmode=disable") {
		t.Errorf("unexpected mask result: %s", masked)
	}

	for _, dsn := range []string{"postgres://news@db/newsflash", "data/ai_cache.json"} {
		if got := maskDSN(dsn); got != dsn {
			t.Errorf("maskDSN(%q) = %q", dsn, got)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short\ntext", 20); got != "short text" {
		t.Errorf("preview = %q", got)
	}
	if got := preview("ééééé", 3); got != "ééé..." {
		t.Errorf("preview = %q", got)
	}
}
