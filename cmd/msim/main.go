package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cl "musicsim/internal/cli"
	"musicsim/internal/config"
	"musicsim/internal/game"
	"musicsim/internal/remote"
	"musicsim/internal/savestore"
	"musicsim/internal/stats"
	"musicsim/internal/store"
	"musicsim/internal/syncq"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "msim",
		Short:        "Music career simulation client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newSignupCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newNewCmd(),
		newSaveCmd(),
		newQuicksaveCmd(),
		newLoadCmd(),
		newSavesCmd(),
		newDeleteCmd(),
		newAdvanceCmd(),
		newPlayCmd(),
		newSyncCmd(),
		newStatsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles everything a command needs, assembled once per invocation.
type app struct {
	cfg     config.ClientConfig
	log     *slog.Logger
	saves   *savestore.Store
	queue   *syncq.Queue
	stats   *stats.Tracker
	gateway *remote.Client
	guest   bool
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClientFromEnv()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	legacy := store.NewFileKV(filepath.Join(cfg.DataDir, "store.json"))
	var primary store.KV
	bolt, err := store.OpenBolt(filepath.Join(cfg.DataDir, "store.db"))
	if err != nil {
		logger.Warn("primary store unavailable, file store only", "err", err)
	} else {
		primary = bolt
		if err := store.NewMigrator(legacy, bolt, logger).Run(ctx); err != nil {
			logger.Warn("legacy migration failed", "err", err)
		}
	}
	kv := store.NewFallbackKV(primary, legacy, logger)

	queue := syncq.New(kv, logger)

	a := &app{
		cfg:   cfg,
		log:   logger,
		queue: queue,
		stats: stats.NewTracker(kv, logger),
		guest: true,
	}

	session, ok, err := cl.LoadSession(cfg.DataDir)
	if err != nil {
		logger.Warn("session unreadable, continuing as guest", "err", err)
	}
	opts := []savestore.Option{savestore.WithQueue(queue)}
	if ok {
		a.guest = false
		a.gateway = remote.NewClient(cfg.APIBaseURL, session.AccessToken)
		opts = append(opts, savestore.WithGateway(a.gateway))
	}
	a.saves = savestore.New(kv, logger, opts...)
	return a, nil
}

func newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create an account for syncing saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientFromEnv()
			if err != nil {
				return err
			}
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := remote.NewClient(cfg.APIBaseURL, "")
			session, err := client.SignUp(ctx, email, password)
			if err != nil {
				return err
			}
			if session.AccessToken == "" {
				printInfo("account created, verify your email, then run `msim login`")
				return nil
			}
			err = cl.SaveSession(cfg.DataDir, cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			})
			if err != nil {
				return err
			}
			printSuccess("signed up as " + session.User.Email)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to sync saves with the remote gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientFromEnv()
			if err != nil {
				return err
			}
			email, err := promptRequired("Email")
			if err != nil {
				return err
			}
			password, err := promptPassword("Password")
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := remote.NewClient(cfg.APIBaseURL, "")
			session, err := client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			err = cl.SaveSession(cfg.DataDir, cl.Session{
				AccessToken:  session.AccessToken,
				RefreshToken: session.RefreshToken,
				Email:        session.User.Email,
				UserID:       session.User.ID,
			})
			if err != nil {
				return err
			}
			printSuccess("logged in as " + session.User.Email)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and play as guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClientFromEnv()
			if err != nil {
				return err
			}
			if err := cl.ClearSession(cfg.DataDir); err != nil {
				return err
			}
			printSuccess("logged out")
			return nil
		},
	}
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new artist career",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			artist, err := promptRequired("Artist name")
			if err != nil {
				return err
			}
			genre, err := promptDefault("Genre", "pop")
			if err != nil {
				return err
			}
			difficulty, err := promptDefault("Difficulty (easy/normal/hard)", "normal")
			if err != nil {
				return err
			}

			state, err := game.NewGameState(artist, genre, difficulty, time.Now().UTC())
			if err != nil {
				return err
			}
			if err := a.saves.Save(ctx, state, savestore.AutoSlot, a.guest); err != nil {
				return err
			}
			if err := a.stats.RecordStart(ctx); err != nil {
				a.log.Warn("stats update failed", "err", err)
			}
			printSuccess("career started, autosaved")
			printState(&state)
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <slot>",
		Short: "Copy the current autosave into a named slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			slot := strings.TrimSpace(args[0])
			if savestore.IsReservedSlot(slot) {
				return fmt.Errorf("slot %q is reserved", slot)
			}
			state, err := a.saves.Load(ctx, savestore.AutoSlot)
			if err != nil {
				return err
			}
			if state == nil {
				return fmt.Errorf("no active career: autosave is empty or expired")
			}
			if err := a.saves.Save(ctx, *state, slot, a.guest); err != nil {
				return err
			}
			printSuccess("saved to " + slot)
			return nil
		},
	}
}

func newQuicksaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quicksave",
		Short: "Copy the current autosave into the quicksave slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			state, err := a.saves.Load(ctx, savestore.AutoSlot)
			if err != nil {
				return err
			}
			if state == nil {
				return fmt.Errorf("no active career: autosave is empty or expired")
			}
			if err := a.saves.Quicksave(ctx, *state, a.guest); err != nil {
				return err
			}
			printSuccess("saved to " + savestore.QuickSlot)
			return nil
		},
	}
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <slot>",
		Short: "Load a slot and make it the active career",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			slot := strings.TrimSpace(args[0])
			state, err := a.saves.Load(ctx, slot)
			if err != nil {
				return err
			}
			if state == nil {
				printWarn("no save found at " + slot)
				return nil
			}
			if err := a.saves.Save(ctx, *state, savestore.AutoSlot, a.guest); err != nil {
				return err
			}
			printState(state)
			return nil
		},
	}
}

func newSavesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List all saves, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			slots, err := a.saves.List(ctx)
			if err != nil {
				return err
			}
			printSlots(slots)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slot>",
		Short: "Delete a save slot locally and remotely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			slot := strings.TrimSpace(args[0])
			if err := a.saves.Delete(ctx, slot); err != nil {
				return err
			}
			printSuccess("deleted " + slot)
			return nil
		},
	}
}

func newAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance [weeks]",
		Short: "Simulate weeks of the active career",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("weeks must be a positive integer")
				}
				weeks = n
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			state, err := a.saves.Load(ctx, savestore.AutoSlot)
			if err != nil {
				return err
			}
			if state == nil {
				return fmt.Errorf("no active career: run `msim new` or `msim load`")
			}

			now := time.Now().UTC()
			ended, err := game.AdvanceWeeks(state, weeks, now)
			if errors.Is(err, game.ErrCareerOver) {
				printWarn("career is already over")
			} else if err != nil {
				return err
			}
			if ended {
				printWarn("career complete!")
				if sErr := a.stats.RecordEnd(ctx, *state, now.UnixMilli()); sErr != nil {
					a.log.Warn("stats update failed", "err", sErr)
				}
			}
			if err := a.saves.Save(ctx, *state, savestore.AutoSlot, a.guest); err != nil {
				return err
			}
			printState(state)
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued offline saves against the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			if a.guest {
				return fmt.Errorf("sync requires login")
			}
			n, err := a.queue.Len(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("offline queue is empty")
				return nil
			}
			if err := a.queue.Flush(ctx, a.gateway); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("replayed %d queued request(s)", n))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show career statistics across playthroughs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			s, err := a.stats.Statistics(ctx)
			if err != nil {
				return err
			}
			printStatistics(s)
			return nil
		},
	}
}
