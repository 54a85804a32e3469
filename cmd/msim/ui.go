package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"musicsim/internal/game"
	"musicsim/internal/savestore"
	"musicsim/internal/stats"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printInfo(msg string) {
	neutral.Println(msg)
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		accent.Printf("%s: ", label)
		line, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		printWarn("value is required")
	}
}

func promptDefault(label, fallback string) (string, error) {
	accent.Printf("%s [%s]: ", label, fallback)
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return fallback, nil
	}
	return line, nil
}

func promptPassword(label string) (string, error) {
	accent.Printf("%s: ", label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	pw := strings.TrimSpace(string(raw))
	if pw == "" {
		return "", fmt.Errorf("password is required")
	}
	return pw, nil
}

func printSlots(slots []savestore.SaveSlot) {
	if len(slots) == 0 {
		printInfo("no saves found")
		return
	}
	accent.Printf("%-12s %-20s %-12s %-14s %-9s %s\n", "SLOT", "ARTIST", "GENRE", "DATE", "PROGRESS", "SAVED")
	for _, s := range slots {
		saved := time.UnixMilli(s.Timestamp).Local().Format("2006-01-02 15:04")
		date := fmt.Sprintf("Y%d M%d W%d", s.Date.Year, s.Date.Month, s.Date.Week)
		neutral.Printf("%-12s %-20s %-12s %-14s %7d%%  %s\n",
			s.ID, s.ArtistName, s.Genre, date, s.CareerProgress, saved)
	}
}

func printState(state *game.GameState) {
	pos := game.Calendar(state.CurrentDate, state.StartDate)
	accent.Printf("%s (%s, %s)\n", state.ArtistName, state.Genre, state.Difficulty)
	neutral.Printf("  week %d — year %d, month %d, week %d\n", state.Week, pos.Year, pos.Month, pos.Week)
	neutral.Printf("  cash $%.2f  fame %d  well-being %d  hype %d  progress %d%%\n",
		game.MicrosToDollars(state.PlayerStats.CashMicros),
		state.PlayerStats.Fame,
		state.PlayerStats.WellBeing,
		state.PlayerStats.Hype,
		game.CareerProgressPercent(state.CurrentDate, state.StartDate))
	if state.LabelContract != nil {
		neutral.Printf("  signed with %s (%d albums)\n", state.LabelContract.LabelName, state.LabelContract.Albums)
	}
}

func printStatistics(s stats.Statistics) {
	accent.Println("career statistics")
	neutral.Printf("  careers started:   %d\n", s.CareersStarted)
	neutral.Printf("  careers completed: %d\n", s.CareersCompleted)
	neutral.Printf("  best fame:         %d\n", s.BestFame)
	neutral.Printf("  best cash:         $%.2f\n", game.MicrosToDollars(s.BestCashMicros))
	neutral.Printf("  total weeks:       %d\n", s.TotalWeeksPlayed)
}
