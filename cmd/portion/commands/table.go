package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jmylchreest/portion/pkg/portion"
	"github.com/jmylchreest/portion/pkg/recipe"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer []string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	// Footers carry run IDs and counts; keep their case.
	tw.Style().Format.Footer = text.FormatDefault

	tw.AppendHeader(toRow(headers, columns))
	for _, row := range rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(footer, columns))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

// renderSummary formats the outcome of a scrape run.
func renderSummary(sum portion.Summary) string {
	headers := []string{"#", "URL", "Dish", "Ingredients", "Size", "Time", "Status"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}

	var total uint64
	rows := make([][]string, 0, len(sum.Pages))
	for i, p := range sum.Pages {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		size := "-"
		if p.Bytes > 0 {
			size = humanize.Bytes(uint64(p.Bytes))
			total += uint64(p.Bytes)
		}
		ingredients := "-"
		if p.OK() {
			ingredients = strconv.Itoa(p.Ingredients)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.URL,
			p.Dish,
			ingredients,
			size,
			p.Duration.Round(time.Millisecond).String(),
			status,
		})
	}

	footer := []string{
		"",
		fmt.Sprintf("run %s", sum.RunID),
		fmt.Sprintf("%d saved, %d failed", sum.Succeeded, sum.Failed),
		"",
		humanize.Bytes(total),
		sum.Elapsed.Round(time.Millisecond).String(),
		"",
	}
	return renderTable(headers, rows, aligns, footer)
}

// renderRecords formats stored recipes, one row per recipe.
func renderRecords(records []recipe.Record) string {
	headers := []string{"#", "Dish", "Ready In", "Yield", "Servings", "Ingredients", "Fetched"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		fetched := "-"
		if !rec.FetchedAt.IsZero() {
			fetched = humanize.Time(rec.FetchedAt)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.DishName,
			rec.ReadyInTime,
			strconv.Itoa(rec.Yield),
			strconv.Itoa(rec.Servings),
			strconv.Itoa(len(rec.Ingredients)),
			fetched,
		})
	}
	return renderTable(headers, rows, aligns, nil)
}
