package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/neighbourly/internal/config"
	"github.com/jakechorley/neighbourly/pkg/clients/gmailclient"
	"github.com/jakechorley/neighbourly/pkg/clients/sheetsclient"
	"github.com/jakechorley/neighbourly/pkg/db"
	"github.com/jakechorley/neighbourly/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env          string
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client
	Database     db.Database
	Metrics      *metrics.Recorder
	Logger       *zap.Logger
	Ctx          context.Context
}

// Commands annotate how much of the AppContext they need.
// Unannotated commands need everything.
const (
	needsAnnotation = "needs"

	NeedsNothing = "nothing"
	NeedsConfig  = "config"
	NeedsAll     = "all"
)

// Needs returns what a command requires to be initialized before it runs
func Needs(cmd *cobra.Command) string {
	if needs, ok := cmd.Annotations[needsAnnotation]; ok {
		return needs
	}
	return NeedsAll
}

func needs(level string) map[string]string {
	return map[string]string{needsAnnotation: level}
}
