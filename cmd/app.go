package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizsmith/internal/ingest"
	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/quiz"
	"github.com/abhisek/quizsmith/internal/store"
)

// app holds the wired services shared by the serve, ingest and quiz commands.
type app struct {
	store   *store.Store
	log     *logger.Logger
	ingest  *ingest.Service
	quizzes *quiz.Service
	cleanup func()
}

func (a *app) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
	a.store.Close()
	a.log.Sync()
}

// openApp opens the store and builds every service. Backends without a
// credential are left unconfigured; only the operations that need them fail.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	ing, cleanup, err := ingest.Setup(ctx, ingest.ConfigFromEnv(), st.SourceRepo(), log)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure ingestion: %w", err)
	}

	var provider llm.Provider
	if cfg, ok := llm.Resolve(); ok {
		provider, err = llm.NewProvider(ctx, cfg, st.EventRepo(), log)
		if err != nil {
			log.Warn("LLM provider not configured", "error", err)
			provider = nil
		} else {
			log.Debug("LLM provider ready", "provider", cfg.Provider, "model", provider.ModelID())
		}
	} else {
		log.Warn("no LLM credential found, AI features will use local fallbacks")
	}

	qcfg := quiz.ConfigFromEnv()
	if placeholder, _ := cmd.Flags().GetBool("placeholder"); placeholder {
		qcfg.AllowPlaceholder = true
	}
	gen, err := quiz.NewGenerator(provider, qcfg)
	if err != nil {
		log.Warn("quiz generation disabled", "reason", err.Error())
		gen = nil
	}

	quizzes := quiz.NewService(st.SourceRepo(), st.QuizRepo(), gen,
		quiz.NewRegenerator(provider, qcfg, log), quiz.NewExplainer(provider, qcfg, log), log)

	return &app{store: st, log: log, ingest: ing, quizzes: quizzes, cleanup: cleanup}, nil
}
