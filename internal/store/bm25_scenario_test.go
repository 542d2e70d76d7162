package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harukit/memodex/internal/store"
	"github.com/harukit/memodex/internal/tokenize"
)

// memoCorpus is the reference five-entry corpus: mixed Japanese and
// English memo titles, as a real changelog produces.
func memoCorpus() []store.Document {
	date := func(day int) time.Time {
		return time.Date(2024, 6, day, 12, 0, 0, 0, time.UTC)
	}
	return []store.Document{
		store.NewDocument("MCPサーバーの実装", date(1), []string{"dev"}, "RustでMCPサーバーを実装した"),
		store.NewDocument("Python環境構築", date(2), []string{"env"}, "Pythonの開発環境を構築した"),
		store.NewDocument("データベース設計", date(3), []string{"db"}, "PostgreSQLのスキーマを設計した"),
		store.NewDocument("検索エンジン開発", date(4), []string{"dev"}, "BM25による全文検索を実装した"),
		store.NewDocument("CI整備", date(5), []string{"infra"}, "GitHub Actionsでデプロイを自動化した"),
	}
}

func TestBM25JapaneseCorpus(t *testing.T) {
	docs := memoCorpus()
	idx := store.NewBM25Index(tokenize.New())
	idx.Build(docs)

	t.Run("acronym query finds the MCP memo", func(t *testing.T) {
		results := idx.Search("MCP", 3)
		require.NotEmpty(t, results)
		assert.Equal(t, docs[0].ID, results[0].ID)
		assert.Greater(t, results[0].Score, 0.0)
	})

	t.Run("english term finds the Python memo", func(t *testing.T) {
		results := idx.Search("Python", 3)
		require.NotEmpty(t, results)
		assert.Equal(t, docs[1].ID, results[0].ID)
	})

	t.Run("japanese term finds matching memos", func(t *testing.T) {
		results := idx.Search("実装", 5)
		require.NotEmpty(t, results)
		ids := make([]string, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.ID)
		}
		assert.Contains(t, ids, docs[0].ID)
		assert.Contains(t, ids, docs[3].ID)
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		assert.Empty(t, idx.Search("", 3))
	})
}
