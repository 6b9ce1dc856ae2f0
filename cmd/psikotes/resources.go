package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/psikotes-app/go-client/internal/models"
	"github.com/psikotes-app/go-client/internal/service"
)

func pageFlags(cmd *cobra.Command, p *service.Page) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.PerPage, "per-page", 20, "items per page")
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Test session operations",
	}

	var p service.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List test sessions with derived status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			sessions, meta, err := a.svc.Sessions(ctx, p)
			if err != nil {
				return err
			}

			now := time.Now()
			type row struct {
				models.Session
				Status models.SessionStatus `json:"status"`
			}

			rows := make([]row, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, row{Session: s, Status: s.Status(now)})
			}

			return printJSON(map[string]any{"sessions": rows, "meta": meta})
		},
	}
	pageFlags(list, &p)

	var in models.SessionInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Schedule a new test session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			sess, err := a.svc.CreateSession(ctx, in)
			if err != nil {
				return err
			}

			return printJSON(sess)
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "session name")
	create.Flags().StringVar(&in.TargetPosition, "position", "", "target position")
	create.Flags().StringVar(&in.StartTime, "start", "", "start time (RFC3339)")
	create.Flags().StringVar(&in.EndTime, "end", "", "end time (RFC3339)")
	create.Flags().IntVar(&in.MaxParticipants, "max", 0, "max participants")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("start")
	_ = create.MarkFlagRequired("end")

	cmd.AddCommand(list, create)

	return cmd
}

func testsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "Psychometric test operations",
	}

	var p service.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			tests, meta, err := a.svc.Tests(ctx, p)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{"tests": tests, "meta": meta})
		},
	}
	pageFlags(list, &p)

	cmd.AddCommand(list)

	return cmd
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User administration",
	}

	var p service.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if !a.ctrl.CanAccess(models.RoleAdmin) {
				return fmt.Errorf("admin role required")
			}

			users, meta, err := a.svc.Users(ctx, p)
			if err != nil {
				return err
			}

			return printJSON(map[string]any{"users": users, "meta": meta})
		},
	}
	pageFlags(list, &p)

	cmd.AddCommand(list)

	return cmd
}

func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show the administrative analytics overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if !a.ctrl.CanAccess(models.RoleAdmin) {
				return fmt.Errorf("admin role required")
			}

			overview, err := a.svc.AnalyticsOverview(ctx)
			if err != nil {
				return err
			}

			return printJSON(overview)
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the participant dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, ctx, err := newApp(cmd.Context())
			if err != nil {
				return err
			}

			if !a.ctrl.CanAccess() {
				return fmt.Errorf("authentication required")
			}

			d, err := a.svc.ParticipantDashboard(ctx)
			if err != nil {
				return err
			}

			return printJSON(d)
		},
	}
}
