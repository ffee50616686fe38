package client

import (
	"os"
	"strings"

	"joddit/internal/app/client/config"
)

// Identity answers "who is logged in right now". Both methods re-read
// the backing files on every call so a login or logout in another
// process is picked up by the next reconcile run.
type Identity interface {
	UserID() (string, bool)
	Credential() (string, bool)
}

type fileIdentity struct {
	tokenPath  string
	userIDPath string
}

func NewFileIdentity(cfg *config.Config) *fileIdentity {
	return &fileIdentity{
		tokenPath:  cfg.TokenPath,
		userIDPath: cfg.UserIDPath,
	}
}

func (f *fileIdentity) UserID() (string, bool) {
	return readIdentityFile(f.userIDPath)
}

func (f *fileIdentity) Credential() (string, bool) {
	return readIdentityFile(f.tokenPath)
}

func readIdentityFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false
	}

	return value, true
}
