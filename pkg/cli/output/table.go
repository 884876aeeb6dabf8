package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table 简单表格输出
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable 创建表格
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		widths:  widths,
	}
}

// AddRow 添加行
func (t *Table) AddRow(row ...string) {
	// 更新列宽
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, row)
}

// Render 渲染表格，行尾不保留多余空格
func (t *Table) Render(w io.Writer) {
	headerColor := color.New(color.FgCyan, color.Bold)
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = pad(h, t.widths[i], i == len(t.headers)-1)
	}
	headerColor.Fprintln(w, strings.Join(cells, "  "))

	// 打印分隔线
	for i := range t.headers {
		cells[i] = strings.Repeat("-", t.widths[i])
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))

	// 打印数据行
	for _, row := range t.rows {
		line := make([]string, 0, len(t.widths))
		for i, cell := range row {
			if i < len(t.widths) {
				line = append(line, pad(cell, t.widths[i], i == len(row)-1 || i == len(t.widths)-1))
			}
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return fmt.Sprintf("%-*s", width, s)
}
