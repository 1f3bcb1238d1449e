package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fsguard/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "config",
		Short:             "Manage the fsguard configuration file",
		PersistentPreRunE: noSetup,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a new config file allowing the --allow directories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if len(a.allow) == 0 {
					return fmt.Errorf("at least one --allow directory is required")
				}
				path, err := config.CreateNewConfig(a.configPath, a.allow)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Configuration written to "+path))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, exists := config.FindConfigFile(a.configPath)
				if !exists {
					path += SubtleStyle.Render(" (not found)")
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(a.configPath)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("allow") {
					cfg.AllowedDirectories = a.allow
				}
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			},
		},
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the fsguard version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: noSetup,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fsguard %s\n", Version)
		},
	}
}
