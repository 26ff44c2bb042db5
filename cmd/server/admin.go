package main

import (
	"fmt"

	"github.com/blockpress/internal/config"
	"github.com/blockpress/internal/db"
	"github.com/blockpress/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	userName     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, err := openDatabase()
		if err != nil {
			return err
		}
		user, err := service.NewAuthService(gdb).CreateUser(userName, userPassword)
		if err != nil {
			return fmt.Errorf("创建用户失败: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin user %q created\n", user.Username)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default home page, header and footer when missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, err := openDatabase()
		if err != nil {
			return err
		}
		result, err := service.SeedDefaults(
			service.NewPageService(gdb, nil),
			service.NewBlockService(gdb, nil),
			service.NewNavigationService(gdb, nil),
			service.NewSettingsService(gdb, nil),
		)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		report := func(created bool, what string) {
			if created {
				fmt.Fprintf(out, "created %s\n", what)
			} else {
				fmt.Fprintf(out, "%s already present\n", what)
			}
		}
		report(result.HomePage, "home page")
		report(result.Header, "global header")
		report(result.Footer, "global footer")
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "username", "admin", "admin username")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "admin password (at least 8 characters)")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}

func openDatabase() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return gdb, nil
}
