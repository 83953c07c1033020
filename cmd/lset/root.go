package lset

import (
	"github.com/lsetdb/lset/cmd/util"
	"github.com/lsetdb/lset/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcSet client.ILSetClient

	// LSetCommands represents the lset command group
	LSetCommands = &cobra.Command{
		Use:               "lset",
		Short:             "Perform LSET operations against a remote engine",
		PersistentPreRunE: setupLSetClient,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupRPCClientFlags(LSetCommands)
	LSetCommands.PersistentFlags().Int("shard", 0, util.WrapString("ID of the engine shard to connect to"))

	LSetCommands.AddCommand(createCmd)
	LSetCommands.AddCommand(addCmd)
	LSetCommands.AddCommand(addAllCmd)
	LSetCommands.AddCommand(getCmd)
	LSetCommands.AddCommand(existsCmd)
	LSetCommands.AddCommand(scanCmd)
	LSetCommands.AddCommand(removeCmd)
	LSetCommands.AddCommand(destroyCmd)
	LSetCommands.AddCommand(sizeCmd)
	LSetCommands.AddCommand(configCmd)
	LSetCommands.AddCommand(getCapacityCmd)
	LSetCommands.AddCommand(setCapacityCmd)
	LSetCommands.AddCommand(dumpCmd)
}

// setupLSetClient initializes the RPC lset client
func setupLSetClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	shardId := util.GetShardID()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcSet, err = client.NewRPCLSetClient(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
