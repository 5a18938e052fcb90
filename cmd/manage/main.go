// manage 运维命令：数据库迁移、创建超级管理员、重建课次
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/config"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/pkg/database"
	applogger "github.com/Lito08/FYPAS/pkg/logger"
)

// env 命令共享的运行环境
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	e := &env{}

	cmd := &cobra.Command{
		Use:           "manage",
		Short:         "FYPAS 运维命令",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(configPath)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("FYPAS_CONFIG_FILE"), "配置文件路径 (YAML)")

	cmd.AddCommand(migrateCmd(e))
	cmd.AddCommand(createSuperadminCmd(e))
	cmd.AddCommand(regenerateSessionsCmd(e))
	return cmd
}

func (e *env) init(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}
	e.cfg, e.logger, e.db = cfg, logger, db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if e.logger != nil {
		e.logger.Sync()
	}
}

func (e *env) repo() *repository.Repository {
	return repository.NewRepository(e.db)
}
