package commands

import (
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// displayWidth counts East Asian wide characters as two columns
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r >= 0x1100 && (r <= 0x115F || (r >= 0x2E80 && r <= 0xA4CF) ||
			(r >= 0xAC00 && r <= 0xD7A3) || (r >= 0xF900 && r <= 0xFAFF) ||
			(r >= 0xFE30 && r <= 0xFE4F) || (r >= 0xFF00 && r <= 0xFF60) ||
			(r >= 0xFFE0 && r <= 0xFFE6)) {
			w += 2
			continue
		}
		w++
	}
	return w
}

// pad left-aligns s to width display columns, truncating with "…"
func pad(s string, width int) string {
	if displayWidth(s) > width {
		var b strings.Builder
		w := 0
		for _, r := range s {
			rw := displayWidth(string(r))
			if w+rw > width-1 {
				break
			}
			b.WriteRune(r)
			w += rw
		}
		s = b.String() + "…"
	}
	return s + strings.Repeat(" ", max(0, width-displayWidth(s)))
}

// padLeft right-aligns s to width display columns
func padLeft(s string, width int) string {
	return strings.Repeat(" ", max(0, width-displayWidth(s))) + s
}

// Column describes one table column
type Column struct {
	Title string
	Width int
	Right bool
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []Column) {
	cells := make([]string, len(columns))
	total := 0
	for i, c := range columns {
		cells[i] = cell(c, c.Title)
		total += c.Width
	}
	fmt.Println(strings.Join(cells, "  "))
	fmt.Println(strings.Repeat("─", total+2*(len(columns)-1)))
}

// PrintTableRow prints a table row
func PrintTableRow(columns []Column, values []string) {
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = cell(c, values[i])
	}
	fmt.Println(strings.Join(cells, "  "))
}

func cell(c Column, v string) string {
	if c.Right {
		return padLeft(v, c.Width)
	}
	return pad(v, c.Width)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %s : %s\n", pad(key, keyWidth), value)
}

// bar renders a horizontal bar of n cells scaled to maxN over width
func bar(n, maxN, width int) string {
	if maxN <= 0 || n <= 0 {
		return ""
	}
	cells := n * width / maxN
	if cells == 0 {
		cells = 1
	}
	return strings.Repeat("█", cells)
}
