package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/pkg/cli/output"
)

// 版本信息（编译时注入）
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// newVersionCmd version命令
func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.outputJSON {
				return output.PrintJSON(a.stdout, map[string]string{
					"version":    Version,
					"git_commit": GitCommit,
					"build_time": BuildTime,
				})
			}
			fmt.Fprintf(a.stdout, "buildsys\n")
			fmt.Fprintf(a.stdout, "  Version:    %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build Time: %s\n", BuildTime)
			return nil
		},
	}
}
