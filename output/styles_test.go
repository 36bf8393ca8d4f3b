package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewStyles(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.True(t, styles != nil)
	assert.True(t, styles.output != nil)
}

func TestStylesColorMethodsPreserveText(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	cases := []struct {
		name   string
		result string
		want   string
	}{
		{"Success", styles.Success("test message"), "test"},
		{"Error", styles.Error("error message"), "error"},
		{"Warning", styles.Warning("warning message"), "warning"},
		{"FilePath", styles.FilePath("/path/to/file.txt"), "/path/to/file.txt"},
		{"Account", styles.Account("Assets:Checking"), "Assets:Checking"},
		{"Amount", styles.Amount("100.50 USD"), "100.50"},
		{"Keyword", styles.Keyword("balance"), "balance"},
		{"Dim", styles.Dim("dimmed text"), "dimmed text"},
	}
	for _, c := range cases {
		assert.True(t, strings.Contains(c.result, c.want), c.name+" dropped its input text")
	}
}

func TestStylesTimingBothBranches(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.True(t, strings.Contains(styles.Timing("5ms", false), "5ms"))
	assert.True(t, strings.Contains(styles.Timing("500ms", true), "500ms"))
}

func TestStylesOutput(t *testing.T) {
	var buf bytes.Buffer
	styles := NewStyles(&buf)

	assert.True(t, styles.Output() != nil)
}
