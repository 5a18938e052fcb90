package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/service"
	"github.com/Lito08/FYPAS/pkg/database"
)

// ────────────────────── migrate ──────────────────────

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "应用全部未执行的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return database.RunMigrations(sqlDB, e.logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := e.db.DB()
			if err != nil {
				return err
			}
			return database.RollbackMigrations(sqlDB, steps, e.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "回滚的版本数")
	cmd.AddCommand(down)

	return cmd
}

// ────────────────────── create-superadmin ──────────────────────

func createSuperadminCmd(e *env) *cobra.Command {
	var firstName, lastName, email, password string

	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "创建超级管理员账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FYPAS_SUPERADMIN_PASSWORD")
			}
			if password == "" {
				return errors.New("必须通过 --password 或 FYPAS_SUPERADMIN_PASSWORD 提供密码")
			}

			users := service.NewUserService(e.repo(), nil, e.logger)
			user, err := users.CreateSuperadmin(cmd.Context(), firstName, lastName, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "超级管理员已创建: %s (%s)\n", user.MatricID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "System", "名")
	cmd.Flags().StringVar(&lastName, "last-name", "Administrator", "姓")
	cmd.Flags().StringVar(&email, "email", "", "个人邮箱")
	cmd.Flags().StringVar(&password, "password", "", "登录密码")
	return cmd
}

// ────────────────────── regenerate-sessions ──────────────────────

func regenerateSessionsCmd(e *env) *cobra.Command {
	var sectionID string
	var all bool

	cmd := &cobra.Command{
		Use:   "regenerate-sessions",
		Short: "重建分组的 14 周课次",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sectionID == "" && !all {
				return errors.New("需要 --section 或 --all")
			}
			sections := service.NewSectionService(e.repo(), e.logger)
			ctx := cmd.Context()

			ids := []string{sectionID}
			if all {
				var err error
				if ids, err = scheduledSectionIDs(ctx, sections); err != nil {
					return err
				}
			}

			total := 0
			for _, id := range ids {
				sessions, err := sections.RegenerateSessions(ctx, id)
				if err != nil {
					e.logger.Error("重建课次失败", zap.String("section", id), zap.Error(err))
					return err
				}
				total += len(sessions)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已重建 %d 个分组，共 %d 个课次\n", len(ids), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&sectionID, "section", "", "分组 ID")
	cmd.Flags().BoolVar(&all, "all", false, "重建所有已排课分组")
	return cmd
}

func scheduledSectionIDs(ctx context.Context, sections service.SectionService) ([]string, error) {
	list, err := sections.List(ctx, &dto.SectionListRequest{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, s := range list {
		if s.Scheduled {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}
