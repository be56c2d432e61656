package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/phrasemine/pkg/phrasemine/store"
	"github.com/cognicore/phrasemine/pkg/phrasemine/store/storetest"
)

func TestSQLiteIntegration(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close()
	storetest.Run(t, st)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	st, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, store.Run{Source: "corpus.csv"})
	require.NoError(t, err)
	require.NoError(t, st.SaveVocabEmbeddings(ctx, "m", []string{"defi"}, [][]float64{{1, 0}}))
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	require.NoError(t, err, "reopen")
	defer st.Close()

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "corpus.csv", got.Source)

	_, ok, err := st.GetVocabEmbeddings(ctx, "m", []string{"defi"})
	require.NoError(t, err)
	assert.True(t, ok, "embeddings lost after reopen")
}
