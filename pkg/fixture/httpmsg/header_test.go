package httpmsg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderAddPreservesRepeats(t *testing.T) {
	h := NewHeader()
	h.Add("X-A", "1")
	h.Add("X-A", "2")
	require.Equal(t, []string{"1", "2"}, h.Values("X-A"))
	require.Equal(t, 2, h.Count("X-A"))
}

func TestHeaderGetIsCaseInsensitive(t *testing.T) {
	h := NewHeader()
	h.Add("Content-Type", "text/html")
	require.Equal(t, "text/html", h.Get("content-type"))
}

func TestHeaderSetReplacesAllValues(t *testing.T) {
	h := NewHeader()
	h.Add("X-A", "1")
	h.Add("X-A", "2")
	h.Set("X-A", "3")
	require.Equal(t, []string{"3"}, h.Values("X-A"))
}

func TestHeaderDel(t *testing.T) {
	h := NewHeader()
	h.Add("X-A", "1")
	h.Del("X-A")
	require.False(t, h.Has("X-A"))
}

func TestHeaderVisitAllPreservesOrder(t *testing.T) {
	h := NewHeader()
	h.Add("X-One", "1")
	h.Add("X-Two", "2")
	var names []string
	h.VisitAll(func(name, value string) { names = append(names, name) })
	require.Equal(t, []string{"X-One", "X-Two"}, names)
}
