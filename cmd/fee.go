package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show a setting of the store",
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change a setting of the store",
}

var getFeeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Show the fee per hour",
	Args:  cobra.NoArgs,
	RunE:  runGetFee,
}

var setFeeCmd = &cobra.Command{
	Use:   "fee <value>",
	Short: "Set the fee per hour",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetFee,
}

func init() {
	getCmd.AddCommand(getFeeCmd)
	setCmd.AddCommand(setFeeCmd)
}

func runGetFee(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(context.Background())
	defer sess.close()
	fmt.Printf("Fee per hour: %.2f\n", sess.store.FeePerHour)
	return nil
}

func runSetFee(cmd *cobra.Command, args []string) error {
	fee, err := strconv.ParseFloat(args[0], 64)
	if err != nil || fee < 0 {
		return fmt.Errorf("invalid fee %q: must be a non-negative number", args[0])
	}

	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()
	old := sess.store.FeePerHour
	sess.store.FeePerHour = fee
	sess.save(ctx)
	fmt.Printf("Fee per hour: %.2f (was %.2f)\n", fee, old)
	return nil
}
