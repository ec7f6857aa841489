package service

import (
	"context"
	"errors"
	"testing"

	"propstack/catalog/internal/domain"
	"propstack/catalog/internal/seed"
	"propstack/catalog/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDocument = `{"A":{"B":[{"name":"X","url":"http://x"}],"C":{"D":[]}}}`

type flakyStore struct {
	*store.MemoryStore
	failSet bool
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newCatalog(t *testing.T, document string, kv store.KeyValueStore) *Catalog {
	t.Helper()
	root, err := domain.ParseDocument([]byte(document))
	require.NoError(t, err)

	documents, err := store.NewDocumentStore(kv, "", root)
	require.NoError(t, err)
	return NewCatalog(documents, nil)
}

func TestCatalogAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with placeholder logo", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		require.NoError(t, catalog.Add(ctx, "A.B", domain.CompanyRecord{Name: "Y", URL: "http://y"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		assert.Equal(t, []domain.CompanyRecord{
			{Name: "X", URL: "http://x"},
			{Name: "Y", URL: "http://y", Logo: "/placeholder-logo.svg"},
		}, companies)
	})

	t.Run("keeps explicit logo and accepts duplicates", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		require.NoError(t, catalog.Add(ctx, "A.B", domain.CompanyRecord{Name: "X", URL: "http://x", Logo: "http://x/logo.png"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, "X", companies[1].Name)
		assert.Equal(t, "http://x/logo.png", companies[1].Logo)
	})

	t.Run("adds reference without name or url", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		require.NoError(t, catalog.Add(ctx, "A.B", domain.CompanyRecord{See: "Other"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		require.Len(t, companies, 2)
		assert.Equal(t, domain.CompanyRecord{See: "Other"}, companies[1])
		assert.True(t, companies[1].IsReference())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		tests := []struct {
			name   string
			path   string
			record domain.CompanyRecord
			err    error
		}{
			{"missing name", "A.B", domain.CompanyRecord{URL: "http://y"}, domain.ErrValidation},
			{"missing url", "A.B", domain.CompanyRecord{Name: "Y"}, domain.ErrValidation},
			{"unknown path", "A.Z", domain.CompanyRecord{Name: "Y", URL: "http://y"}, domain.ErrPathNotFound},
			{"category node", "A.C", domain.CompanyRecord{Name: "Y", URL: "http://y"}, domain.ErrNotAList},
			{"root", "", domain.CompanyRecord{Name: "Y", URL: "http://y"}, domain.ErrNotAList},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				assert.ErrorIs(t, catalog.Add(ctx, tc.path, tc.record), tc.err)
			})
		}

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		assert.Len(t, companies, 1)
	})

	t.Run("adds to an empty list", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		require.NoError(t, catalog.Add(ctx, "A.C.D", domain.CompanyRecord{Name: "Y", URL: "http://y"}))

		companies, err := catalog.Companies(ctx, "A.C.D")
		require.NoError(t, err)
		assert.Len(t, companies, 1)
	})
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty name keeps the stored name", func(t *testing.T) {
		catalog := newCatalog(t, `{"A":{"B":[{"name":"X","url":"http://x","logo":"http://x/l.png"}]}}`, store.NewMemoryStore())

		require.NoError(t, catalog.Update(ctx, "A.B", 0, domain.CompanyRecord{Name: "", URL: "http://x2"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		assert.Equal(t, domain.CompanyRecord{Name: "X", URL: "http://x2", Logo: "http://x/l.png"}, companies[0])
	})

	t.Run("non-empty name replaces the stored name", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		require.NoError(t, catalog.Update(ctx, "A.B", 0, domain.CompanyRecord{Name: "X2"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		assert.Equal(t, "X2", companies[0].Name)
		assert.Equal(t, "http://x", companies[0].URL)
	})

	t.Run("reference entries stay references", func(t *testing.T) {
		catalog := newCatalog(t, `{"A":{"B":[{"see":"Other"}]}}`, store.NewMemoryStore())

		require.NoError(t, catalog.Update(ctx, "A.B", 0, domain.CompanyRecord{See: "Elsewhere"}))

		companies, err := catalog.Companies(ctx, "A.B")
		require.NoError(t, err)
		assert.Equal(t, "Elsewhere", companies[0].See)
	})

	t.Run("bounds and shape", func(t *testing.T) {
		catalog := newCatalog(t, scenarioDocument, store.NewMemoryStore())

		assert.ErrorIs(t, catalog.Update(ctx, "A.B", 1, domain.CompanyRecord{Name: "Q"}), domain.ErrIndexOutOfBounds)
		assert.ErrorIs(t, catalog.Update(ctx, "A.B", -1, domain.CompanyRecord{Name: "Q"}), domain.ErrIndexOutOfBounds)
		assert.ErrorIs(t, catalog.Update(ctx, "A.C", 0, domain.CompanyRecord{Name: "Q"}), domain.ErrNotAList)
		assert.ErrorIs(t, catalog.Update(ctx, "Z", 0, domain.CompanyRecord{Name: "Q"}), domain.ErrPathNotFound)
	})
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t, `{"A":{"B":[
		{"name":"P","url":"http://p"},
		{"name":"Q","url":"http://q"},
		{"name":"R","url":"http://r"},
		{"name":"S","url":"http://s"}
	]}}`, store.NewMemoryStore())

	require.NoError(t, catalog.Delete(ctx, "A.B", 1))

	companies, err := catalog.Companies(ctx, "A.B")
	require.NoError(t, err)
	names := make([]string, 0, len(companies))
	for _, c := range companies {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"P", "R", "S"}, names)

	assert.ErrorIs(t, catalog.Delete(ctx, "A.B", 3), domain.ErrIndexOutOfBounds)
	assert.ErrorIs(t, catalog.Delete(ctx, "A", 0), domain.ErrNotAList)
	assert.ErrorIs(t, catalog.Delete(ctx, "A.X", 0), domain.ErrPathNotFound)
}

func TestCatalogReset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	catalog := newCatalog(t, scenarioDocument, kv)

	require.NoError(t, catalog.Add(ctx, "A.B", domain.CompanyRecord{Name: "Y", URL: "http://y"}))
	require.NoError(t, catalog.Update(ctx, "A.B", 0, domain.CompanyRecord{URL: "http://x2"}))
	require.NoError(t, catalog.Delete(ctx, "A.B", 1))

	require.NoError(t, catalog.Reset(ctx))

	stored, err := kv.Get(ctx, store.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, scenarioDocument, string(stored))
}

func TestCatalogPersistFirst(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{MemoryStore: store.NewMemoryStore()}
	catalog := newCatalog(t, scenarioDocument, kv)

	_, err := catalog.Document(ctx)
	require.NoError(t, err)

	kv.failSet = true
	err = catalog.Add(ctx, "A.B", domain.CompanyRecord{Name: "Y", URL: "http://y"})
	assert.ErrorIs(t, err, store.ErrPersistenceUnavailable)
	assert.ErrorIs(t, catalog.Reset(ctx), store.ErrPersistenceUnavailable)

	kv.failSet = false
	companies, err := catalog.Companies(ctx, "A.B")
	require.NoError(t, err)
	assert.Len(t, companies, 1, "a failed write leaves the stored document untouched")
}

// Two catalogs sharing one store model two browser tabs: each mutation
// rewrites the whole document, so nothing is lost here, but a writer holding
// an older copy overwrites everything written after it loaded.
func TestCatalogLastWriteWins(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	first := newCatalog(t, scenarioDocument, kv)
	second := newCatalog(t, scenarioDocument, kv)

	require.NoError(t, first.Add(ctx, "A.B", domain.CompanyRecord{Name: "Y", URL: "http://y"}))
	require.NoError(t, second.Add(ctx, "A.B", domain.CompanyRecord{Name: "Z", URL: "http://z"}))

	companies, err := first.Companies(ctx, "A.B")
	require.NoError(t, err)
	assert.Len(t, companies, 3, "sequential writers see each other")

	stale, err := first.Document(ctx)
	require.NoError(t, err)

	require.NoError(t, second.Delete(ctx, "A.B", 0))

	documents, err := store.NewDocumentStore(kv, "", stale)
	require.NoError(t, err)
	require.NoError(t, documents.Save(ctx, stale))

	companies, err = second.Companies(ctx, "A.B")
	require.NoError(t, err)
	assert.Len(t, companies, 3, "the stale write silently undid the delete")
	assert.Equal(t, "X", companies[0].Name)
}

func TestCatalogReads(t *testing.T) {
	ctx := context.Background()
	root, err := seed.Default()
	require.NoError(t, err)
	documents, err := store.NewDocumentStore(store.NewMemoryStore(), "", root)
	require.NoError(t, err)
	catalog := NewCatalog(documents, nil)

	t.Run("categories", func(t *testing.T) {
		categories, err := catalog.Categories(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, categories)
		assert.Equal(t, domain.CategoryInfo{Path: "Multifamily", Name: "Multifamily"}, categories[0])
		assert.Equal(t, "Multifamily.PRE-OCCUPANCY", categories[1].Path)
		for _, c := range categories {
			node, err := catalog.Resolve(ctx, c.Path)
			require.NoError(t, err)
			assert.True(t, node.IsCategory(), c.Path)
		}
	})

	t.Run("grid separates references", func(t *testing.T) {
		grid, err := catalog.Grid(ctx, "Multifamily.PRE-OCCUPANCY.Site Visit.Interior Access")
		require.NoError(t, err)
		assert.Equal(t, "Interior Access", grid.Name)
		assert.Equal(t, []string{"Self Guided Tours"}, grid.Related)
		for _, company := range grid.Companies {
			assert.Empty(t, company.See)
		}
	})

	t.Run("grid on unknown path", func(t *testing.T) {
		_, err := catalog.Grid(ctx, "Multifamily.NO_SUCH.segment")
		assert.ErrorIs(t, err, domain.ErrPathNotFound)
	})

	t.Run("find company returns first match", func(t *testing.T) {
		match, err := catalog.FindCompany(ctx, "Rently")
		require.NoError(t, err)
		assert.Equal(t, "Multifamily.PRE-OCCUPANCY.Site Visit.Self Guided Tours", match.Path)
		assert.Equal(t, 1, match.Index)
		assert.Equal(t, "https://rently.com", match.Company.URL)

		_, err = catalog.FindCompany(ctx, "Nobody")
		assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	})

	t.Run("featured", func(t *testing.T) {
		featured, err := catalog.Featured(ctx)
		require.NoError(t, err)
		require.Len(t, featured, 6)
		assert.Equal(t, "MarTech", featured[0].Category)
		assert.Equal(t, "G5", featured[0].Name)
		assert.Equal(t, "Website", featured[3].Category)
		for _, f := range featured {
			assert.False(t, f.IsReference())
		}
	})

	t.Run("missing logos", func(t *testing.T) {
		candidates, err := catalog.MissingLogos(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, candidates)
		for _, c := range candidates {
			assert.NotEmpty(t, c.Name)
			assert.NotEmpty(t, c.URL)
		}
	})
}

func TestCatalogSetLogo(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t, `{"A":{"B":[
		{"name":"X","url":"http://x","logo":"/placeholder-logo.svg"},
		{"name":"X","url":"http://x/2"}
	]}}`, store.NewMemoryStore())

	require.NoError(t, catalog.SetLogo(ctx, "A.B", "X", "http://x/logo.png"))
	require.NoError(t, catalog.SetLogo(ctx, "A.B", "X", "http://x/2/logo.png"))
	assert.ErrorIs(t, catalog.SetLogo(ctx, "A.B", "X", "http://x/3/logo.png"), domain.ErrCompanyNotFound)

	companies, err := catalog.Companies(ctx, "A.B")
	require.NoError(t, err)
	assert.Equal(t, "http://x/logo.png", companies[0].Logo)
	assert.Equal(t, "http://x/2/logo.png", companies[1].Logo)

	missing, err := catalog.MissingLogos(ctx)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
