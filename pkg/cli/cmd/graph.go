package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/pkg/core/resolver"
	"github.com/LENAX/buildsys/pkg/export"
)

// newGraphCmd graph命令
func newGraphCmd(a *app) *cobra.Command {
	var rankDir string

	graphCmd := &cobra.Command{
		Use:   "graph <build_name>",
		Short: "以 Graphviz DOT 格式输出构建的依赖图",
		Long: `以 Graphviz DOT 格式输出构建的依赖图。

使用示例：
  buildsys graph build3 | dot -Tsvg > build3.svg`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return export.WriteDOT(a.stdout, args[0], snap.Builds, snap.Tasks, export.Options{
				Resolver: resolver.Options{CycleCheck: a.cfg.CycleCheckMode()},
				RankDir:  rankDir,
			})
		},
	}
	graphCmd.Flags().StringVar(&rankDir, "rankdir", "", "布局方向（TB/LR/BT/RL）")
	return graphCmd
}
