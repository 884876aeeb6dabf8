package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	internalstorage "github.com/LENAX/buildsys/internal/storage"
	"github.com/LENAX/buildsys/pkg/cli/output"
	"github.com/LENAX/buildsys/pkg/loader"
)

// newImportCmd import命令
func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "把YAML定义导入数据库",
		Long: `读取 --tasks-file 与 --builds-file，在一个事务内替换数据库中的全部定义。

使用示例：
  buildsys import --db-type sqlite --dsn ./buildsys.db`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbCfg := a.cfg.Source.Database
			if err := dbCfg.Validate(); err != nil {
				return usageError(err)
			}

			// 1. 读取文件定义
			snap, err := loader.LoadDefinitions(a.cfg.Source.TasksFile, a.cfg.Source.BuildsFile)
			if err != nil {
				return err
			}

			// 2. 写入数据库
			repo, err := internalstorage.NewDefinitionRepository(dbCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			record, err := repo.SaveDefinitions(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("导入定义失败: %w", err)
			}
			a.logger.WithFields(logrus.Fields{
				"import_id": record.ID,
				"db_type":   dbCfg.Type,
			}).Info("定义已导入")

			if a.outputJSON {
				return output.PrintJSON(a.stdout, record)
			}
			output.Success(a.stdout, "已导入 %d 个任务和 %d 个构建 (import %s)",
				record.TaskCount, record.BuildCount, record.ID)
			return nil
		},
	}
}
