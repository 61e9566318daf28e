package commands

import (
	"fmt"
	"os"

	"github.com/marmos91/dittosync/internal/logger"
	"github.com/marmos91/dittosync/pkg/config"
	"github.com/marmos91/dittosync/pkg/hostid"
	"github.com/marmos91/dittosync/pkg/idmap"
	"github.com/marmos91/dittosync/pkg/metrics"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newSession builds the identity directory and a mapping session from the
// loaded configuration.
func newSession(cfg *config.Config) (*idmap.Session, error) {
	dir, err := hostid.New(cfg.DirectoryOptions())
	if err != nil {
		return nil, err
	}

	opts, err := cfg.SessionOptions(metrics.NewIdmapMetrics())
	if err != nil {
		return nil, err
	}
	return idmap.NewSession(dir, opts), nil
}

// closeFile closes f, reporting the error only if err is nil.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("close %s: %w", f.Name(), cerr)
	}
}
