package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ferux/pushcenter/internal/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printDevices(w io.Writer, devices []model.Device) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCODE\tEXPIRES\tEXPIRED")

	for _, d := range devices {
		expires := "-"
		if d.ExpireDate != nil {
			expires = d.ExpireDate.String()
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", d.ID, d.Name, d.DeviceCode, expires, d.IsExpired)
	}

	_ = tw.Flush()
}

func printMessages(w io.Writer, messages []model.Message) {
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tTARGET\tGROUP\tTITLE\tOK\tERROR")

	for _, m := range messages {
		target := string(m.Target)
		if m.TargetDeviceID != "" {
			target += ":" + m.TargetDeviceID
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			m.Timestamp.Local().Format(time.RFC3339), target, m.MessageGroup, m.Title, m.IsSuccess, m.ErrorMessage)
	}

	_ = tw.Flush()
}

func printReport(w io.Writer, r model.ConnectivityReport) {
	fmt.Fprintf(w, "%s: %d/%d succeeded\n", r.Timestamp.Local().Format(time.RFC3339), r.SuccessCount, r.TotalCount)

	if len(r.Results) == 0 {
		return
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "DEVICE\tNAME\tOK\tERROR")

	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", res.DeviceID, res.DeviceName, res.Success, res.Error)
	}

	_ = tw.Flush()
}
