package commands

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"diskmeta/internal/config"
	"diskmeta/internal/fsmeta"
	"diskmeta/internal/util"
)

// session is everything one command needs to talk to the store.
type session struct {
	ctx      context.Context
	client   *fsmeta.Client
	settings *config.Settings
	logger   logrus.FieldLogger

	cancel context.CancelFunc
	lock   *flock.Flock
}

// openSession loads the settings, opens the configured store and bounds
// the command by op_timeout. The config dir lock is held for the lifetime
// of the session: shared for readers, exclusive when write is set.
func openSession(cmd *cobra.Command, opts *rootOptions, write bool) (*session, error) {
	if err := config.InitDir(opts.configDir); err != nil {
		return nil, err
	}
	settings, err := config.Load(opts.configDir)
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		settings.Backend = strings.ToLower(opts.backend)
	}
	if opts.logLevel != "" {
		settings.LogLevel = strings.ToLower(opts.logLevel)
	}
	if err := config.Validate(settings); err != nil {
		return nil, err
	}

	logger := config.NewLogger(settings.LogLevel, cmd.ErrOrStderr()).WithField("cmd", cmd.Name())

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, settings.OpTimeout)
	s := &session{ctx: ctx, cancel: cancel, settings: settings, logger: logger}

	// Badger admits a single process per directory, so readers take the
	// lock exclusively there too.
	exclusive := write || settings.Backend == config.BackendBadger
	lock, err := acquireLock(ctx, config.LockPath(opts.configDir), lockTimeout(settings.OpTimeout), exclusive)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.lock = lock

	store, err := config.OpenStore(ctx, settings, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = fsmeta.NewClient(store, logger)
	return s, nil
}

// Close releases the store, the lock and the context.
func (s *session) Close() {
	if s.client != nil {
		if err := s.client.Store().Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close store")
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			s.logger.WithError(err).Warn("Failed to release lock")
		}
	}
	s.cancel()
}

func lockTimeout(opTimeout time.Duration) time.Duration {
	if opTimeout > 0 && opTimeout < util.DefaultPollConfig().Timeout {
		return opTimeout
	}
	return util.DefaultPollConfig().Timeout
}
