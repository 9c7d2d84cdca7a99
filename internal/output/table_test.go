package output

import (
	"strings"
	"testing"
)

func plainTable(t *testing.T) {
	t.Helper()
	SetNoColor(true)
	t.Cleanup(func() { SetNoColor(false) })
}

func TestVisualLen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "AUTH-12", 7},
		{"empty", "", 0},
		{"styled", "\x1b[1m\x1b[38;5;75mCOMPLETED\x1b[0m", 9},
		{"arrow", "▲ (+12%)", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visualLen(tt.in); got != tt.want {
				t.Errorf("visualLen(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPadding(t *testing.T) {
	if got := pad("42", 5); got != "42   " {
		t.Errorf("pad = %q", got)
	}
	if got := padLeft("42", 5); got != "   42" {
		t.Errorf("padLeft = %q", got)
	}
	if got := padLeft("1,250,000", 3); got != "1,250,000" {
		t.Errorf("padLeft should not truncate, got %q", got)
	}
	styled := "\x1b[32m7\x1b[0m"
	if got := padLeft(styled, 3); got != "  "+styled {
		t.Errorf("padLeft(styled) = %q", got)
	}
}

func TestTable_RenderSessions(t *testing.T) {
	plainTable(t)

	tbl := NewTable("Ticket", "Tokens").AlignRight(1)
	tbl.AddRow("AUTH-1", "1,200")
	tbl.AddRow("docs/api-guide", "85")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	want := []string{
		"Ticket          Tokens",
		"──────────────  ──────",
		"AUTH-1           1,200",
		"docs/api-guide      85",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), tbl)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTable_AlignRightIgnoresUnknownColumns(t *testing.T) {
	plainTable(t)

	tbl := NewTable("A").AlignRight(-1, 3)
	tbl.AddRow("x")
	if got := tbl.Render(); !strings.HasSuffix(got, "x\n") {
		t.Errorf("Render() = %q", got)
	}
}

func TestTable_RowShape(t *testing.T) {
	plainTable(t)

	tbl := NewTable("Ticket", "Status", "Cost")
	tbl.AddRow("AUTH-1")
	tbl.AddRow("AUTH-2", "ACTIVE", "$0.10", "ignored")

	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	out := tbl.String()
	if strings.Contains(out, "ignored") {
		t.Errorf("extra cell rendered:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if got := strings.TrimRight(lines[2], " "); got != "AUTH-1" {
		t.Errorf("short row = %q, want AUTH-1", got)
	}
}

func TestTable_NoHeaders(t *testing.T) {
	if got := NewTable().Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

func TestTable_StyledCellsKeepColumnsAligned(t *testing.T) {
	SetNoColor(false)

	tbl := NewTable("Status", "Tokens").AlignRight(1)
	tbl.AddRow(StyleSuccess.Render("COMPLETED"), "10")
	tbl.AddRow("ACTIVE", "2,000")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	for i, line := range lines[2:] {
		if w := visualLen(line); w != visualLen(lines[0]) {
			t.Errorf("row %d width = %d, header width = %d", i, w, visualLen(lines[0]))
		}
	}
}
