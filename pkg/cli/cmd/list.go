package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/pkg/cli/output"
)

// newListCmd list命令
func newListCmd(a *app) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "列出任务或构建",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError(fmt.Errorf("请指定 tasks 或 builds"))
		},
	}

	listCmd.AddCommand(&cobra.Command{
		Use:   "tasks",
		Short: "按声明顺序列出所有任务",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return a.printNames("tasks", snap.Tasks.Names())
		},
	})

	listCmd.AddCommand(&cobra.Command{
		Use:   "builds",
		Short: "按声明顺序列出所有构建",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return a.printNames("builds", snap.Builds.Names())
		},
	})

	return listCmd
}

// printNames 输出名称列表
func (a *app) printNames(kind string, names []string) error {
	if a.outputJSON {
		return output.PrintJSON(a.stdout, names)
	}
	fmt.Fprintf(a.stdout, "List of available %s:\n", kind)
	for _, name := range names {
		fmt.Fprintf(a.stdout, " * %s\n", name)
	}
	return nil
}
