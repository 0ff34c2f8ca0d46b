package report

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hupe1980/gallerybench/model"
)

// Summary renders one row per shard plus a total row.
func Summary(reports []ShardReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Shard", "Action", "Status", "Records", "Failed", "Duration", "Error"})

	var records, failed int
	overall := model.StatusSuccess
	for _, r := range reports {
		records += r.Records
		failed += r.Failed
		overall = model.Worst(overall, r.ShardStatus())
		tw.AppendRow(table.Row{
			strconv.Itoa(r.Shard),
			r.Action,
			r.Status,
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Failed),
			duration(r),
			r.Error,
		})
	}
	tw.AppendFooter(table.Row{"total", "", overall.String(), strconv.Itoa(records), strconv.Itoa(failed), "", ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, WidthMax: 60},
	})
	return tw.Render()
}

func duration(r ShardReport) string {
	if r.Started.IsZero() || r.Finished.Before(r.Started) {
		return ""
	}
	return r.Finished.Sub(r.Started).Round(time.Millisecond).String()
}
