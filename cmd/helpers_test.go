package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/config"
	"github.com/sells-group/media-import/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{PreviewRows: 5, RelevanceWarningThreshold: 30, Concurrency: 2, MaxFetchMB: 1}
}

// newTestEnv builds a pipeline env; withStore adds a migrated temp-dir SQLite store.
func newTestEnv(t *testing.T, withStore bool) *pipelineEnv {
	t.Helper()
	env, err := buildPipeline(testImportConfig())
	require.NoError(t, err)

	if withStore {
		st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		require.NoError(t, st.Migrate(context.Background()))
		env.Store = st
	}
	t.Cleanup(env.Close)
	return env
}

const leadsCSV = "first_name,last_name,email,title,company,industry\n" +
	"Jane,Doe,jane@acme.com,VP Media,Acme,Retail\n" +
	"John,Roe,bad-email,Media Planner,Globex Media,Advertising\n"
