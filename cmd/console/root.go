package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "haulage-console",
		Short:         "Work with haulage orders from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print raw JSON instead of tables")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newSectionsCmd(a),
		newSessionCmd(a),
		newOrdersCmd(a),
		newBranchesCmd(a),
		newEnquiriesCmd(a),
		newStaffCmd(a),
	)
	return root
}
