package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/pkg/cli/output"
	"github.com/LENAX/buildsys/pkg/core/resolver"
)

// newGetCmd get命令
func newGetCmd(a *app) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "查看任务或构建详情",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError(fmt.Errorf("请指定 task 或 build"))
		},
	}

	getCmd.AddCommand(&cobra.Command{
		Use:   "task <task_name>",
		Short: "查看任务的直接依赖",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			task, err := snap.Tasks.Lookup(args[0])
			if err != nil {
				return err
			}

			if a.outputJSON {
				return output.PrintJSON(a.stdout, task)
			}
			fmt.Fprintf(a.stdout, "Task info:\n * name: %s\n * dependencies: %s\n",
				task.Name, strings.Join(task.Dependencies, ", "))
			return nil
		},
	})

	getCmd.AddCommand(&cobra.Command{
		Use:   "build <build_name>",
		Short: "查看构建解析后的任务执行顺序",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			name := args[0]
			order, err := resolver.ResolveWithOptions(name, snap.Builds, snap.Tasks, resolver.Options{
				CycleCheck: a.cfg.CycleCheckMode(),
			})
			if err != nil {
				a.logger.WithField("build", name).WithError(err).Debug("构建解析失败")
				return err
			}

			if a.outputJSON {
				entries, _ := snap.Builds.EntryTasks(name)
				return output.PrintJSON(a.stdout, map[string]interface{}{
					"name":  name,
					"tasks": entries,
					"order": order,
				})
			}
			fmt.Fprintf(a.stdout, "Build info:\n * name: %s\n * tasks: %s\n", name, strings.Join(order, ", "))
			return nil
		},
	})

	return getCmd
}
