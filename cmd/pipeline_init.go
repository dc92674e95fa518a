package main

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/config"
	"github.com/sells-group/media-import/internal/fetcher"
	"github.com/sells-group/media-import/internal/fieldmap"
	"github.com/sells-group/media-import/internal/importer"
	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/parser"
	"github.com/sells-group/media-import/internal/role"
	"github.com/sells-group/media-import/internal/scorer"
	"github.com/sells-group/media-import/internal/store"
	"github.com/sells-group/media-import/internal/validate"
)

// pipelineEnv holds the pipeline and the optional store used by the
// import, contacts, and serve commands.
type pipelineEnv struct {
	Store    store.Store // nil when store.driver is none
	Pipeline *importer.Pipeline
	Remote   *fetcher.Remote
	Rules    role.Rules
	Aliases  fieldmap.Aliases
	Weights  scorer.Weights
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline validates config for mode, opens and migrates the store, and
// builds the pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env, err := buildPipeline(cfg.Import)
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}
	env.Store = st
	return env, nil
}

// buildPipeline loads the keyword and alias tables and wires the stages.
func buildPipeline(ic config.ImportConfig) (*pipelineEnv, error) {
	rules := role.DefaultRules()
	if ic.RulesPath != "" {
		r, err := role.LoadRules(ic.RulesPath)
		if err != nil {
			return nil, eris.Wrap(err, "load role rules")
		}
		rules = r
	}

	aliases := fieldmap.DefaultAliases()
	if ic.AliasesPath != "" {
		a, err := fieldmap.LoadAliases(ic.AliasesPath)
		if err != nil {
			return nil, eris.Wrap(err, "load field aliases")
		}
		aliases = a
	}

	weights, err := scoringWeights(ic.Scoring)
	if err != nil {
		return nil, err
	}

	engine := role.New(rules)
	p := parser.New(fieldmap.NewMapper(aliases), engine,
		parser.WithPreviewRows(ic.PreviewRows),
		parser.WithCSVOptions(csvOptions(ic)),
	)
	v := validate.New(engine, validate.WithRelevanceThreshold(ic.RelevanceWarningThreshold))
	s := scorer.New(engine, weights)

	remote := fetcher.NewRemote(fetcher.RemoteOptions{
		MaxBytes:   int64(ic.MaxFetchMB) << 20,
		RatePerSec: ic.FetchRatePerSec,
	})

	zap.L().Debug("pipeline initialized",
		zap.String("rules_path", ic.RulesPath),
		zap.String("aliases_path", ic.AliasesPath),
		zap.Int("specializations", len(rules.Specializations)),
		zap.Int("relevance_keywords", len(rules.Relevance)),
	)

	return &pipelineEnv{
		Pipeline: importer.New(p, v, s),
		Remote:   remote,
		Rules:    rules,
		Aliases:  aliases,
		Weights:  weights,
	}, nil
}

// scoringWeights overlays the configured weights on the defaults. Config keys
// arrive lower-cased, so seniority levels are normalized before lookup.
func scoringWeights(sc config.ScoringConfig) (scorer.Weights, error) {
	w := scorer.DefaultWeights()
	overrides := []struct {
		dst *float64
		src *float64
	}{
		{&w.RelevanceFactor, sc.RelevanceFactor},
		{&w.Email, sc.Email},
		{&w.Phone, sc.Phone},
		{&w.LinkedIn, sc.LinkedIn},
		{&w.DecisionMaking, sc.DecisionMaking},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	for level, pts := range sc.Seniority {
		key := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(level)))
		w.Seniority[model.Seniority(key)] = pts
	}

	if err := scorer.ValidateWeights(w); err != nil {
		return scorer.Weights{}, eris.Wrap(err, "import.scoring")
	}
	return w, nil
}

func csvOptions(ic config.ImportConfig) fetcher.CSVOptions {
	opts := fetcher.CSVOptions{LazyQuotes: ic.CSVLazyQuotes, TrimSpace: true}
	if ic.CSVDelimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(ic.CSVDelimiter)
	}
	return opts
}

// initStore opens the configured store. It returns nil for driver none.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
