package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/miner"
	"github.com/sells-group/leadminer/internal/model"
	"github.com/sells-group/leadminer/internal/store"
	"github.com/sells-group/leadminer/pkg/anthropic"
)

// env bundles the wired subsystems a command needs.
type env struct {
	Store  store.Store
	Miner  *miner.Miner
	Locale model.Locale
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens and migrates the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		s, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// initEnv wires the store and miner from config.
func initEnv(ctx context.Context) (*env, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic key is required (LEADMINER_ANTHROPIC_KEY)")
	}

	s, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	loc := model.NormalizeLocale(cfg.Locale)
	m := miner.New(anthropic.NewClient(cfg.Anthropic.Key), miner.Options{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Locale:    loc,
	})

	return &env{Store: s, Miner: m, Locale: loc}, nil
}
