package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"haulage/internal/domain"
	"haulage/internal/dto"
	"haulage/internal/visibility"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "List, book and move orders through their lifecycle",
	}
	cmd.AddCommand(
		newOrdersListCmd(a),
		newOrdersGetCmd(a),
		newOrdersCreateCmd(a),
		newOrdersUpdateCmd(a),
		newOrdersDeleteCmd(a),
	)
	return cmd
}

func newOrdersListCmd(a *app) *cobra.Command {
	var statuses []string
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the orders visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			view, err := parseView(statuses, search)
			if err != nil {
				return err
			}

			orders, err := a.gatewayFor(p.Role).Orders.List(cmd.Context())
			if err != nil {
				return err
			}
			orders = visibility.Filter(orders, p, view)

			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), orders)
			}
			return printOrders(cmd.OutOrStdout(), orders, func(o *domain.Order) []string {
				return actionNames(visibility.Actions(a.policy, o, p))
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "only these statuses, e.g. --status review,approved")
	cmd.Flags().StringVar(&search, "search", "", "free-text match on company, customer, phone and places")
	return cmd
}

func newOrdersGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			o, err := a.gatewayFor(p.Role).Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), o)
			}
			return printOrderDetail(cmd.OutOrStdout(), &o, actionNames(visibility.Actions(a.policy, &o, p)))
		},
	}
}

func newOrdersCreateCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book an order from a JSON booking form",
		Long:  "Book an order. The booking form is read as JSON from --file, or from stdin when --file is -.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var req dto.CreateOrderRequest
			dec := json.NewDecoder(r)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				return fmt.Errorf("reading booking form: %w", err)
			}

			o, err := a.gatewayFor(p.Role).Orders.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s booked, status %s\n", o.ID, o.Status.Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "booking form JSON file")
	return cmd
}

// updateFlags are the order fields the console can patch. Only flags the
// user actually set go into the request.
type updateFlags struct {
	action, status, assistantID       string
	rate                              float64
	vehicle, driver, driverMobile     string
	notes, pickupNotes, branchID      string
	lrNumber, ewayBill, podURL, lrURL string
}

func newOrdersUpdateCmd(a *app) *cobra.Command {
	var f updateFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply an action or edit fields of an order",
		Example: `  orders update 7c1e --action assign --assistant 0b5d
  orders update 7c1e --action review
  orders update 7c1e --action confirm --rate 5000
  orders update 7c1e --action pickup --vehicle TN01AB1234 --driver Kumar --driver-mobile 9000000001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			req := f.request(cmd)

			o, err := a.gatewayFor(p.Role).Orders.Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), o)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", o.ID, o.Status.Label())
			return nil
		},
	}

	f.bind(cmd)
	return cmd
}

func (f *updateFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.action, "action", "", "assign, review, approve, confirm, pickup, reject or attach")
	fl.StringVar(&f.assistantID, "assistant", "", "assistant user id, sent with --action assign")
	fl.StringVar(&f.status, "status", "", "target status; mapped onto the action that reaches it")
	fl.Float64Var(&f.rate, "rate", 0, "quoted rate")
	fl.StringVar(&f.vehicle, "vehicle", "", "vehicle number")
	fl.StringVar(&f.driver, "driver", "", "driver name")
	fl.StringVar(&f.driverMobile, "driver-mobile", "", "driver mobile number")
	fl.StringVar(&f.notes, "notes", "", "commercial notes")
	fl.StringVar(&f.pickupNotes, "pickup-notes", "", "pickup team notes")
	fl.StringVar(&f.branchID, "branch", "", "reassign the order to a branch")
	fl.StringVar(&f.lrNumber, "lr-number", "", "lorry receipt number")
	fl.StringVar(&f.lrURL, "lr-url", "", "lorry receipt document URL")
	fl.StringVar(&f.ewayBill, "eway-bill", "", "e-way bill number")
	fl.StringVar(&f.podURL, "pod-url", "", "proof of delivery URL")
	cmd.MarkFlagsMutuallyExclusive("action", "status")
}

func (f *updateFlags) request(cmd *cobra.Command) dto.UpdateOrderRequest {
	changed := cmd.Flags().Changed
	str := func(name, v string) *string {
		if !changed(name) {
			return nil
		}
		return &v
	}

	req := dto.UpdateOrderRequest{
		Action:          str("action", strings.ToLower(f.action)),
		Status:          str("status", f.status),
		BranchID:        str("branch", f.branchID),
		AssistantID:     str("assistant", f.assistantID),
		Notes:           str("notes", f.notes),
		VehicleNumber:   str("vehicle", f.vehicle),
		DriverName:      str("driver", f.driver),
		DriverMobile:    str("driver-mobile", f.driverMobile),
		PickupTeamNotes: str("pickup-notes", f.pickupNotes),
	}
	if changed("rate") {
		rate := f.rate
		req.Rate = &rate
	}
	if changed("lr-number") || changed("lr-url") || changed("eway-bill") || changed("pod-url") {
		req.Documents = &dto.DocumentsRequest{
			LRNumber:       f.lrNumber,
			LRURL:          f.lrURL,
			EwayBillNumber: f.ewayBill,
			PODURL:         f.podURL,
		}
	}
	return req
}

func newOrdersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.gatewayFor(p.Role).Orders.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s deleted\n", args[0])
			return nil
		},
	}
}

func parseView(statuses []string, search string) (visibility.View, error) {
	view := visibility.View{Search: search}
	for _, raw := range statuses {
		s, ok := domain.ParseStatus(strings.TrimSpace(raw))
		if !ok {
			return view, fmt.Errorf("unknown status %q", raw)
		}
		view.Statuses = append(view.Statuses, s)
	}
	return view, nil
}
