package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LENAX/buildsys/pkg/cli/output"
	"github.com/LENAX/buildsys/pkg/core/dag"
	"github.com/LENAX/buildsys/pkg/core/resolver"
	"github.com/LENAX/buildsys/pkg/metrics"
)

// buildStatus 单个构建的检查结果
type buildStatus struct {
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Order  []string `json:"order,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// checkResult check命令的完整结果
type checkResult struct {
	Audit  *dag.Report   `json:"audit"`
	Builds []buildStatus `json:"builds"`
}

// ok 任务图审计通过且所有构建都能解析
func (r *checkResult) ok() bool {
	if !r.Audit.OK() {
		return false
	}
	for _, b := range r.Builds {
		if b.Error != "" {
			return false
		}
	}
	return true
}

// newCheckCmd check命令
func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "审计任务图并解析所有构建",
		Long: `审计任务图中的未定义引用和循环依赖，并逐个解析所有构建。

发现任何问题时退出码为1。`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			// 1. 审计任务图
			result := &checkResult{Audit: dag.Audit(snap.Tasks)}

			// 2. 逐个解析构建
			opts := resolver.Options{CycleCheck: a.cfg.CycleCheckMode()}
			for _, name := range snap.Builds.Names() {
				order, err := resolver.ResolveWithOptions(name, snap.Builds, snap.Tasks, opts)
				status := buildStatus{Name: name, Status: metrics.Outcome(err), Order: order}
				if err != nil {
					status.Error = err.Error()
				}
				result.Builds = append(result.Builds, status)
			}

			// 3. 输出结果
			if a.outputJSON {
				if err := output.PrintJSON(a.stdout, result); err != nil {
					return err
				}
			} else {
				a.renderCheck(result)
			}

			if !result.ok() {
				return &ExitError{Code: ExitFailure, Err: errors.New("check failed"), Silent: true}
			}
			return nil
		},
	}
}

func (a *app) renderCheck(result *checkResult) {
	report := result.Audit
	if report.OK() {
		output.Success(a.stdout, "任务图通过审计: %d 个任务, 根任务 %v, 终端任务 %v",
			report.Tasks, report.Roots, report.Targets)
	}
	for _, undef := range report.Undefined {
		output.Warning(a.stdout, "%s", undef.Error())
	}
	if report.Cycle != nil {
		output.Warning(a.stdout, "%s", report.Cycle.Error())
	}
	if report.Error != "" {
		output.Warning(a.stdout, "%s", report.Error)
	}

	table := output.NewTable([]string{"BUILD", "STATUS", "TASKS", "DETAIL"})
	for _, b := range result.Builds {
		tasks := "-"
		if b.Error == "" {
			tasks = strconv.Itoa(len(b.Order))
		}
		table.AddRow(b.Name, b.Status, tasks, b.Error)
	}
	fmt.Fprintln(a.stdout)
	table.Render(a.stdout)
}
