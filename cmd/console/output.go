package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"haulage/internal/domain"
	"haulage/internal/lifecycle"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOrders(w io.Writer, orders []domain.Order, actions func(*domain.Order) []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCOMPANY\tROUTE\tRATE\tACTIONS")
	for i := range orders {
		o := &orders[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.Status.Label(), o.BookedCompanyName, route(o), rate(o.Rate), strings.Join(actions(o), ","))
	}
	return tw.Flush()
}

func printOrderDetail(w io.Writer, o *domain.Order, actions []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", k, v)
		}
	}
	row("id", o.ID)
	row("status", o.Status.Label())
	row("branch", o.BranchID)
	row("company", o.BookedCompanyName)
	row("customer", o.BookedCustomerName)
	row("phone", o.BookedPhoneNumber)
	row("route", route(o))
	row("rate", rate(o.Rate))
	row("vehicle", o.VehicleNumber)
	row("driver", strings.TrimSpace(o.DriverName+" "+o.DriverMobile))
	row("lr", o.Documents.LRNumber)
	row("actions", strings.Join(actions, ", "))
	return tw.Flush()
}

func route(o *domain.Order) string {
	var from, to []string
	for _, p := range o.Pickups {
		from = append(from, p.Location)
	}
	for _, d := range o.Deliveries {
		to = append(to, d.Location)
	}
	return strings.Join(from, "+") + " -> " + strings.Join(to, "+")
}

func rate(r float64) string {
	if r == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", r)
}

func actionNames(actions []lifecycle.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}
