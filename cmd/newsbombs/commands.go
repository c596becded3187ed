// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"newsbombs/internal/articles"
	"newsbombs/internal/database"
	"newsbombs/internal/importer"
	"newsbombs/internal/store"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and sample articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Seed(cmd.Context(), db)
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create or update articles from a JSON or YAML file",
		Long: "Reads a list of articles (or a single article) from a .json, .yaml or .yml\n" +
			"file. Articles are matched by slug: existing ones are replaced, others created\n" +
			"and attributed to the default admin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := importer.Parse(f.Name(), f)
			if err != nil {
				return err
			}
			slog.Info("articles found in file", "file", args[0], "count", len(records))

			ctx := cmd.Context()
			db, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			adminID, err := database.EnsureAdmin(ctx, db)
			if err != nil {
				return err
			}
			authorID, err := uuid.Parse(adminID)
			if err != nil {
				return fmt.Errorf("admin id: %w", err)
			}

			// Rendered pages on a running server expire on their own TTL.
			svc := articles.NewService(store.NewArticleStore(db), nil)
			res, err := importer.New(svc, authorID).Import(ctx, records)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created: %d\nupdated: %d\nskipped: %d\ntotal:   %d\n",
				res.Created, res.Updated, res.Skipped, res.Total())
			return nil
		},
	}
}

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage editor accounts",
	}
	cmd.AddCommand(newUserCreateCmd(), newUserListCmd(), newUserResetTOTPCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		name    string
		isAdmin bool
	)
	cmd := &cobra.Command{
		Use:   "create <email> <password>",
		Short: "Create an editor account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := store.NewUserStore(db).Create(cmd.Context(), args[0], args[1], name, isAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().BoolVar(&isAdmin, "admin", true, "grant administrator rights (required to edit articles)")
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List editor accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			users, err := store.NewUserStore(db).List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tADMIN\t2FA")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", u.ID, u.Email, u.DisplayName, u.IsAdmin, u.TOTPEnabled)
			}
			return tw.Flush()
		},
	}
}

func newUserResetTOTPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-2fa <email>",
		Short: "Disable two-factor authentication for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			users := store.NewUserStore(db)
			u, err := users.FindByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no user with email %s", args[0])
			}
			if err := users.ResetTOTP(cmd.Context(), u.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "two-factor authentication disabled for %s\n", u.Email)
			return nil
		},
	}
}
