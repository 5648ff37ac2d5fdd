package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/condopay/condopay/internal/app/store/audit"
	"github.com/condopay/condopay/internal/app/store/queries/paymentqueries"
	userstore "github.com/condopay/condopay/internal/app/store/users"
	"github.com/condopay/condopay/internal/app/system/adminops"
	"github.com/condopay/condopay/internal/app/system/auditlog"
	"github.com/condopay/condopay/internal/app/system/paystats"
	"github.com/condopay/condopay/internal/app/system/tasks"
	"github.com/condopay/condopay/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func auditLogger(db *mongo.Database, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "all", Admin: "all"})
}

// PromoteAdminCmd grants the admin role for a building to a registered user.
func PromoteAdminCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Make a registered user the admin of a building",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			building, _ := cmd.Flags().GetString("building")

			return env.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				u, changed, err := adminops.PromoteAdmin(ctx, userstore.New(db), auditLogger(db, env.Log), email, building, "cli")
				if err != nil {
					return fmt.Errorf("promote %s: %w", email, err)
				}
				if !changed {
					fmt.Fprintf(env.Out, "%s is already the admin of %s\n", u.Email, building)
					return nil
				}
				fmt.Fprintf(env.Out, "promoted %s (%s) to admin of %s\n", u.Email, u.ID, building)
				return nil
			})
		},
	}
	cmd.Flags().String("email", "", "Email of the registered user")
	cmd.Flags().String("building", "", "Building ID the admin manages")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("building")
	return cmd
}

// OverdueCmd prints the overdue tenants of a building.
func OverdueCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List tenants with no completed payment in the last 30 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			building, _ := cmd.Flags().GetString("building")

			return env.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				snap, err := paymentqueries.BuildingSnapshot(ctx, db, building)
				if err != nil {
					return fmt.Errorf("load building %s: %w", building, err)
				}
				now := env.now()
				res := paystats.Compute(snap.Tenants, snap.Payments, now, paystats.MonthOf(now, env.Location))

				tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "UNIT\tTENANT\tEMAIL\tDAYS\tAMOUNT")
				for _, o := range res.Overdue {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\n", o.UnitNo, o.Name, o.Email, o.DaysOverdue, o.OverdueAmount)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(env.Out, "%d overdue of %d tenants, %.2f outstanding\n",
					res.Stats.OverdueTenants, res.Stats.TotalTenants, res.Stats.OverduePayments)
				return nil
			})
		},
	}
	cmd.Flags().String("building", "", "Building ID")
	_ = cmd.MarkFlagRequired("building")
	return cmd
}

// RemindCmd records a manual reminder for every overdue tenant of a building.
func RemindCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send reminders to the overdue tenants of a building",
		RunE: func(cmd *cobra.Command, args []string) error {
			building, _ := cmd.Flags().GetString("building")

			return env.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				rem := tasks.NewReminders(db, auditLogger(db, env.Log), env.Log).InLocation(env.Location)
				n, err := rem.Send(ctx, building, models.ReminderManual, "condopayctl", env.now())
				if err != nil {
					return fmt.Errorf("send reminders: %w", err)
				}
				fmt.Fprintf(env.Out, "sent %d reminder(s) for %s\n", n, building)
				return nil
			})
		},
	}
	cmd.Flags().String("building", "", "Building ID")
	_ = cmd.MarkFlagRequired("building")
	return cmd
}
