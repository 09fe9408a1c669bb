package client

import (
	"fmt"

	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/mission"
	"github.com/opd-ai/go-starstrike/pkg/session"
)

// Overlay returns the text drawn over the arena for the current state.
// Play has no overlay.
func (a *App) Overlay() []string {
	a.mu.Lock()
	selected, notice := a.selected, a.notice
	scores := a.scores
	a.mu.Unlock()

	switch a.ctrl.State() {
	case session.Menu:
		m := mission.Get(selected)
		lines := []string{
			"STARSTRIKE",
			fmt.Sprintf("Mission %d: %s", m.ID, m.Name),
			fmt.Sprintf("Lives %d   High score %d", a.ctrl.Lives(), a.ctrl.HighScore()),
			"",
			"ENTER start   M missions   T ticket",
			"L leaderboard   P profile   N sound   Q quit",
		}
		if notice != "" {
			lines = append(lines, "", notice)
		}
		return lines

	case session.MissionSelect:
		lines := []string{"SELECT MISSION"}
		for _, m := range mission.All() {
			marker := " "
			if m.ID == selected {
				marker = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %d. %s", marker, m.ID, m.Name))
		}
		return append(lines, "", "ESC back")

	case session.GameOver:
		f := a.Frame()
		return []string{
			"GAME OVER",
			fmt.Sprintf("Score %d   Wave %d", f.Score, f.Wave),
			fmt.Sprintf("High score %d", a.ctrl.HighScore()),
			"",
			"ENTER menu",
		}

	case session.Victory:
		return []string{
			"MISSION COMPLETE",
			fmt.Sprintf("Score %d", a.ctrl.Score()),
			"",
			"ENTER menu",
		}

	case session.Leaderboard:
		lines := []string{"LEADERBOARD"}
		if len(scores) == 0 {
			lines = append(lines, "No scores yet")
		}
		for i, s := range scores {
			name := s.Username
			if name == "" {
				name = logging.MaskWallet(s.Wallet)
			}
			lines = append(lines, fmt.Sprintf("%2d. %-16s %8d  M%d W%d", i+1, name, s.Score, s.Mission, s.Wave))
		}
		return append(lines, "", "ESC back")

	case session.Profile:
		wallet := a.ctrl.Wallet()
		if wallet == "" {
			wallet = "offline"
		} else {
			wallet = logging.MaskWallet(wallet)
		}
		return []string{
			"PROFILE",
			"Wallet " + wallet,
			fmt.Sprintf("Lives %d", a.ctrl.Lives()),
			fmt.Sprintf("High score %d", a.ctrl.HighScore()),
			"",
			"ESC back",
		}

	default:
		return nil
	}
}
