package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Session is the locally persisted identity. No session file means guest
// mode: the remote gateway is never contacted.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"email"`
	UserID       string `json:"user_id"`
}

func sessionPath(dataDir string) string {
	return filepath.Join(dataDir, "session.json")
}

func SaveSession(dataDir string, s Session) error {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(dataDir), body, 0o600)
}

// LoadSession returns the stored session, or ok=false for guest mode.
func LoadSession(dataDir string) (Session, bool, error) {
	body, err := os.ReadFile(sessionPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, false, fmt.Errorf("parse session: %w", err)
	}
	if strings.TrimSpace(s.AccessToken) == "" {
		return Session{}, false, nil
	}
	return s, true, nil
}

func ClearSession(dataDir string) error {
	path := sessionPath(dataDir)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return os.Remove(path)
}
