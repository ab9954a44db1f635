package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewplan/app"
	"github.com/kilianp07/crewplan/core/planning"
	"github.com/kilianp07/crewplan/infra/logger"
	"github.com/kilianp07/crewplan/pkg/export"
)

var (
	planTenant string
	planAll    bool
	planFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a planning cycle now and print the report",
	RunE:  plan,
}

func init() {
	planCmd.Flags().StringVar(&planTenant, "tenant", "", "tenant to plan")
	planCmd.Flags().BoolVar(&planAll, "all", false, "plan every enabled tenant")
	planCmd.Flags().StringVarP(&planFormat, "output", "o", "json", "report format: json or csv")
	planCmd.MarkFlagsMutuallyExclusive("tenant", "all")
	planCmd.MarkFlagsOneRequired("tenant", "all")
	rootCmd.AddCommand(planCmd)
}

func plan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("plan").Errorf("service close: %v", err)
		}
	}()

	var (
		out     any
		reports []planning.CycleReport
		runErr  error
	)
	if planAll {
		var run planning.RunReport
		run, runErr = svc.Orchestrator().RunAll(ctx, planning.TriggerManual)
		out, reports = run, run.Tenants
	} else {
		var rep planning.CycleReport
		rep, runErr = svc.Orchestrator().RunTenant(ctx, planTenant)
		out, reports = rep, []planning.CycleReport{rep}
	}
	if err := export.Write(cmd.OutOrStdout(), planFormat, out, reports...); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("planning run: %w", runErr)
	}
	return nil
}
