package lset

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// decodeArg parses a CLI argument as JSON if possible, falling back to the
// raw string. This lets keys/values be given either as plain strings
// ("hello") or as JSON literals (42, true, {"a":1}) on the command line.
func decodeArg(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func decodeModule(s string) any {
	if s == "" {
		return nil
	}
	return decodeArg(s)
}

func decodeFilterArgs(args []string) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = decodeArg(a)
	}
	return out
}

var (
	createCmd = &cobra.Command{
		Use:   "create [topRec] [bin]",
		Short: "Creates a new LSET descriptor in a bin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			if err := rpcSet.Create(args[0], args[1], decodeModule(module)); err != nil {
				return err
			}
			fmt.Println("created successfully")
			return nil
		},
	}

	addCmd = &cobra.Command{
		Use:   "add [topRec] [bin] [value]",
		Short: "Inserts a single member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			if err := rpcSet.Add(args[0], args[1], decodeArg(args[2]), decodeModule(module)); err != nil {
				return err
			}
			fmt.Println("added successfully")
			return nil
		},
	}

	addAllCmd = &cobra.Command{
		Use:   "addall [topRec] [bin] [value...]",
		Short: "Inserts several members, aborting on the first duplicate",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			values := decodeFilterArgs(args[2:])
			if err := rpcSet.AddAll(args[0], args[1], values, decodeModule(module)); err != nil {
				return err
			}
			fmt.Println("added all successfully")
			return nil
		},
	}

	getCmd = &cobra.Command{
		Use:   "get [topRec] [bin] [key]",
		Short: "Returns a member by key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			filterName, _ := cmd.Flags().GetString("filter")
			filterArgs, _ := cmd.Flags().GetStringSlice("filter-args")

			value, err := rpcSet.Get(args[0], args[1], decodeArg(args[2]), decodeModule(module), filterName, decodeFilterArgs(filterArgs))
			if err != nil {
				return err
			}
			fmt.Printf("value=%v\n", value)
			return nil
		},
	}

	existsCmd = &cobra.Command{
		Use:   "exists [topRec] [bin] [key]",
		Short: "Reports whether a member is present",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := rpcSet.Exists(args[0], args[1], decodeArg(args[2]))
			if err != nil {
				return err
			}
			fmt.Printf("exists=%v\n", ok)
			return nil
		},
	}

	scanCmd = &cobra.Command{
		Use:   "scan [topRec] [bin]",
		Short: "Returns every member passing an optional filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			filterName, _ := cmd.Flags().GetString("filter")
			filterArgs, _ := cmd.Flags().GetStringSlice("filter-args")

			values, err := rpcSet.Scan(args[0], args[1], decodeModule(module), filterName, decodeFilterArgs(filterArgs))
			if err != nil {
				return err
			}
			fmt.Printf("values=%v\n", values)
			return nil
		},
	}

	removeCmd = &cobra.Command{
		Use:   "remove [topRec] [bin] [key]",
		Short: "Deletes a member by key",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _ := cmd.Flags().GetString("module")
			filterName, _ := cmd.Flags().GetString("filter")
			filterArgs, _ := cmd.Flags().GetStringSlice("filter-args")
			returnVal, _ := cmd.Flags().GetBool("return-val")

			value, err := rpcSet.Remove(args[0], args[1], decodeArg(args[2]), decodeModule(module), filterName, decodeFilterArgs(filterArgs), returnVal)
			if err != nil {
				return err
			}
			if returnVal {
				fmt.Printf("removed value=%v\n", value)
			} else {
				fmt.Println("removed successfully")
			}
			return nil
		},
	}

	destroyCmd = &cobra.Command{
		Use:   "destroy [topRec] [bin]",
		Short: "Removes the descriptor, cascading sub-records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcSet.Destroy(args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("destroyed successfully")
			return nil
		},
	}

	sizeCmd = &cobra.Command{
		Use:   "size [topRec] [bin]",
		Short: "Returns the logical member count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := rpcSet.Size(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("size=%d\n", size)
			return nil
		},
	}

	configCmd = &cobra.Command{
		Use:   "config [topRec] [bin]",
		Short: "Returns the configurable options plus live counters",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rpcSet.Config(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("config=%v\n", cfg)
			return nil
		},
	}

	getCapacityCmd = &cobra.Command{
		Use:   "get-capacity [topRec] [bin]",
		Short: "Returns the advisory capacity ceiling",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := rpcSet.GetCapacity(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("capacity=%d\n", capacity)
			return nil
		},
	}

	setCapacityCmd = &cobra.Command{
		Use:   "set-capacity [topRec] [bin] [capacity]",
		Short: "Sets the advisory capacity ceiling",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			capacity, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("capacity must be a number: %w", err)
			}
			if err := rpcSet.SetCapacity(args[0], args[1], capacity); err != nil {
				return err
			}
			fmt.Println("capacity set successfully")
			return nil
		},
	}

	dumpCmd = &cobra.Command{
		Use:   "dump [topRec] [bin]",
		Short: "Returns a diagnostic report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := rpcSet.Dump(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{createCmd, addCmd, addAllCmd, getCmd, scanCmd, removeCmd} {
		cmd.Flags().String("module", "", "UserModule to apply (package name or JSON settings override)")
	}
	for _, cmd := range []*cobra.Command{getCmd, scanCmd, removeCmd} {
		cmd.Flags().String("filter", "", "Name of a registered filter function")
		cmd.Flags().StringSlice("filter-args", nil, "Comma-separated arguments passed to the filter function")
	}
	removeCmd.Flags().Bool("return-val", false, "Return the removed member's value")
}
