// Package cli implements condopayctl, the operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const commandTimeout = 30 * time.Second

// Env is what the commands need from the outside world.
type Env struct {
	// Connect opens the database and returns a function that closes it.
	Connect func(ctx context.Context) (*mongo.Database, func(context.Context) error, error)
	Out     io.Writer
	Log     *zap.Logger
	Now     func() time.Time
	// Location is the zone for month filters and reminder days. nil is UTC.
	Location *time.Location
}

// NewRootCmd builds the condopayctl command tree.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "condopayctl",
		Short:         "CondoPay operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		PromoteAdminCmd(env),
		OverdueCmd(env),
		RemindCmd(env),
	)
	return root
}

// EnvFromOS connects with CONDOPAY_MONGO_URI and CONDOPAY_MONGO_DATABASE,
// the same variables the server reads.
func EnvFromOS(logger *zap.Logger) *Env {
	return &Env{
		Connect: func(ctx context.Context) (*mongo.Database, func(context.Context) error, error) {
			uri := os.Getenv("CONDOPAY_MONGO_URI")
			if uri == "" {
				return nil, nil, errors.New("CONDOPAY_MONGO_URI not set in environment or .env file")
			}
			name := os.Getenv("CONDOPAY_MONGO_DATABASE")
			if name == "" {
				name = "condopay"
			}
			client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
			if err != nil {
				return nil, nil, fmt.Errorf("mongo connect: %w", err)
			}
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, fmt.Errorf("mongo ping: %w", err)
			}
			return client.Database(name), client.Disconnect, nil
		},
		Out:      os.Stdout,
		Log:      logger,
		Now:      time.Now,
		Location: locationFromOS(logger),
	}
}

// locationFromOS reads CONDOPAY_TIMEZONE, falling back to UTC.
func locationFromOS(logger *zap.Logger) *time.Location {
	name := os.Getenv("CONDOPAY_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("invalid CONDOPAY_TIMEZONE, using UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}

// withDB runs fn against a connected database and closes it afterwards.
func (e *Env) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *mongo.Database) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	db, closeFn, err := e.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn != nil {
			if err := closeFn(context.Background()); err != nil {
				e.Log.Warn("database close failed", zap.Error(err))
			}
		}
	}()
	return fn(ctx, db)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
