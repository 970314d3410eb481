package ids

import (
	"strings"
	"testing"
)

func TestNew_SortableAndPrefixed(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		id := New("ntf_")
		if !strings.HasPrefix(id, "ntf_") {
			t.Fatalf("Expected prefix ntf_, got %s", id)
		}
		if id <= prev {
			t.Fatalf("Expected %s to sort after %s", id, prev)
		}
		prev = id
	}
}
