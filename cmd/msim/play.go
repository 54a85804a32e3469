package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"musicsim/internal/game"
	"musicsim/internal/savestore"
	"musicsim/internal/syncq"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Interactive session with periodic autosave and offline sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			current, err := a.saves.Load(ctx, savestore.AutoSlot)
			if err != nil {
				return err
			}
			if current == nil {
				return fmt.Errorf("no active career: run `msim new` or `msim load`")
			}

			var mu sync.Mutex
			snapshot := func() (game.GameState, bool) {
				mu.Lock()
				defer mu.Unlock()
				if current == nil {
					return game.GameState{}, false
				}
				return *current, true
			}

			runner := savestore.NewRunner(a.saves, a.cfg.AutosaveEvery, snapshot, a.guest, a.log)
			go runner.Run(ctx)
			if !a.guest {
				watcher := syncq.NewWatcher(a.queue, a.gateway, a.gateway, a.cfg.ConnectivityPoll, a.log)
				go watcher.Run(ctx)
			}

			printState(current)
			printInfo("commands: advance, status, save <slot>, quicksave, quit")
			for {
				line, err := promptRequired("msim")
				if err != nil {
					return err
				}
				fields := strings.Fields(line)
				switch fields[0] {
				case "advance", "a":
					mu.Lock()
					ended, err := game.AdvanceWeeks(current, 1, time.Now().UTC())
					mu.Unlock()
					if ended {
						printWarn("career complete!")
						if sErr := a.stats.RecordEnd(ctx, *current, time.Now().UnixMilli()); sErr != nil {
							a.log.Warn("stats update failed", "err", sErr)
						}
					} else if errors.Is(err, game.ErrCareerOver) {
						printWarn("career is already over")
					} else if err != nil {
						printWarn(err.Error())
					}
					printState(current)
				case "status", "s":
					printState(current)
				case "save":
					if len(fields) != 2 {
						printWarn("usage: save <slot>")
						continue
					}
					if savestore.IsReservedSlot(fields[1]) {
						printWarn("slot " + fields[1] + " is reserved")
						continue
					}
					mu.Lock()
					state := *current
					mu.Unlock()
					if err := a.saves.Save(ctx, state, fields[1], a.guest); err != nil {
						printWarn(err.Error())
						continue
					}
					printSuccess("saved to " + fields[1])
				case "quicksave", "qs":
					mu.Lock()
					state := *current
					mu.Unlock()
					if err := a.saves.Quicksave(ctx, state, a.guest); err != nil {
						printWarn(err.Error())
						continue
					}
					printSuccess("saved to " + savestore.QuickSlot)
				case "quit", "q":
					mu.Lock()
					state := *current
					mu.Unlock()
					if err := a.saves.Autosave(ctx, state, a.guest); err != nil {
						printWarn(err.Error())
					}
					printInfo("autosaved, goodbye")
					return nil
				default:
					printWarn("unknown command: " + fields[0])
				}
			}
		},
	}
}
