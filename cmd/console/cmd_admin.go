package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"haulage/internal/dto"
)

func newBranchesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "branches",
		Aliases: []string{"branch"},
		Short:   "Manage branches",
	}

	var create dto.CreateBranchRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a branch",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			b, err := a.gatewayFor(p.Role).Branches.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Branch %s created (%s)\n", b.Name, b.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&create.Name, "name", "", "branch name")
	createCmd.Flags().StringVar(&create.Location, "location", "", "branch location")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List branches",
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.principal(cmd.Context())
				if err != nil {
					return err
				}
				branches, err := a.gatewayFor(p.Role).Branches.List(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return printJSON(cmd.OutOrStdout(), branches)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tLOCATION")
				for _, b := range branches {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.Location)
				}
				return tw.Flush()
			},
		},
		createCmd,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a branch no order or user refers to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.principal(cmd.Context())
				if err != nil {
					return err
				}
				if err := a.gatewayFor(p.Role).Branches.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Branch %s deleted\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newEnquiriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "enquiries",
		Aliases: []string{"enquiry"},
		Short:   "Review contact form enquiries",
	}

	var status string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Set an enquiry's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			e, err := a.gatewayFor(p.Role).Enquiries.Update(cmd.Context(), args[0], dto.UpdateEnquiryRequest{Status: status})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enquiry %s is %s\n", e.ID, e.Status)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&status, "status", "", `"Pending", "In Progress" or "Completed"`)
	_ = updateCmd.MarkFlagRequired("status")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List enquiries, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := a.principal(cmd.Context())
				if err != nil {
					return err
				}
				enquiries, err := a.gatewayFor(p.Role).Enquiries.List(cmd.Context())
				if err != nil {
					return err
				}
				if a.jsonOutput {
					return printJSON(cmd.OutOrStdout(), enquiries)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSTATUS\tCOMPANY\tEMAIL\tPHONE\tRECEIVED")
				for _, e := range enquiries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						e.ID, e.Status, e.Company, e.Email, e.Phone, e.CreatedAt.Format("2006-01-02"))
				}
				return tw.Flush()
			},
		},
		updateCmd,
	)
	return cmd
}

func newStaffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}

	var req dto.StaffRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.gatewayFor(p.Role).Users.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", u.Role, u.Name, u.ID)
			return nil
		},
	}
	fl := createCmd.Flags()
	fl.StringVar(&req.Name, "name", "", "full name")
	fl.StringVar(&req.Email, "email", "", "email")
	fl.StringVar(&req.Phone, "phone", "", "phone number")
	fl.StringVar(&req.Password, "password", "", "initial password")
	fl.StringVar(&req.Role, "role", "", "ADMIN, ASSISTANT, PICKUP, LR, DELIVERY or SUPER_ADMIN")
	fl.StringVar(&req.BranchID, "branch", "", "branch id; branch admins always use their own")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			u, err := a.gatewayFor(p.Role).Users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}

	cmd.AddCommand(createCmd, getCmd)
	return cmd
}
