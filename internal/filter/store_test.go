package filter_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcm-suite/qcm/internal/filter"
	"github.com/qcm-suite/qcm/internal/platform/storage"
)

func iqcSpec() filter.Spec {
	return filter.Spec{
		Name:       "incoming-quality-checks",
		StorageKey: "filters:incoming-quality-checks",
		Defaults: filter.State{
			PerPage:        10,
			CreatedAtOrder: filter.OrderDesc,
		},
		Fields: []string{"plant", "start_date", "end_date"},
	}
}

func onPage(t *testing.T, store *filter.Store, page int) {
	t.Helper()
	store.SetPage(page)
	require.Equal(t, page, store.Snapshot().Page)
}

func TestSettersResetPage(t *testing.T) {
	status := "approved"
	perPage := 25
	cases := map[string]func(*testing.T, *filter.Store){
		"search":       func(t *testing.T, s *filter.Store) { s.SetSearch("lot") },
		"per_page":     func(t *testing.T, s *filter.Store) { s.SetPerPage(50) },
		"status":       func(t *testing.T, s *filter.Store) { s.SetStatus("pending") },
		"order":        func(t *testing.T, s *filter.Store) { s.SetOrder(filter.OrderAsc) },
		"toggle order": func(t *testing.T, s *filter.Store) { s.ToggleOrder() },
		"field":        func(t *testing.T, s *filter.Store) { require.NoError(t, s.SetField("plant", "2")) },
		"set filter": func(t *testing.T, s *filter.Store) {
			require.NoError(t, s.SetFilter(filter.Patch{Status: &status, PerPage: &perPage}))
		},
		"same value": func(t *testing.T, s *filter.Store) { s.SetSearch(s.Snapshot().Search) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store := filter.NewStore(iqcSpec())
			onPage(t, store, 4)
			mutate(t, store)
			assert.Equal(t, 1, store.Snapshot().Page)
		})
	}
}

func TestSetFilterWithExplicitPageKeepsIt(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	page := 3
	search := "x"
	require.NoError(t, store.SetFilter(filter.Patch{Page: &page, Search: &search}))
	snap := store.Snapshot()
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, "x", snap.Search)
}

func TestResetRestoresDefaults(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	store.SetSearch("abc")
	store.SetStatus("rejected")
	store.SetPerPage(50)
	require.NoError(t, store.SetField("plant", "7"))
	store.NextPage()

	store.Reset()
	assert.Equal(t, store.Defaults(), store.Snapshot())
	assert.Equal(t, filter.State{Page: 1, PerPage: 10, CreatedAtOrder: filter.OrderDesc}, store.Snapshot())
}

func TestNextPrevPageFlooredAtOne(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	store.PrevPage()
	assert.Equal(t, 1, store.Snapshot().Page)
	store.NextPage()
	store.NextPage()
	assert.Equal(t, 3, store.Snapshot().Page)
	store.PrevPage()
	assert.Equal(t, 2, store.Snapshot().Page)
}

func TestPageAndPerPageNormalization(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	store.SetPage(-5)
	assert.Equal(t, 1, store.Snapshot().Page)
	store.SetPerPage(0)
	assert.Equal(t, 10, store.Snapshot().PerPage)
	store.SetPerPage(1000)
	assert.Equal(t, 100, store.Snapshot().PerPage)
}

func TestUnknownFieldRejected(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	err := store.SetField("category", "1")
	require.ErrorIs(t, err, filter.ErrUnknownField)
	err = store.SetFilter(filter.Patch{Fields: map[string]string{"category": "1"}})
	require.ErrorIs(t, err, filter.ErrUnknownField)
	assert.Empty(t, store.Snapshot().Fields)
}

func TestClearingFieldRemovesIt(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	require.NoError(t, store.SetField("plant", "1"))
	require.NoError(t, store.SetField("plant", ""))
	assert.Empty(t, store.Snapshot().Fields)
}

func TestListenersFireOnlyOnChange(t *testing.T) {
	store := filter.NewStore(iqcSpec())
	var calls int
	var last filter.State
	unsubscribe := store.Subscribe(func(_, next filter.State) {
		calls++
		last = next
	})

	store.SetSearch("a")
	store.SetSearch("a")
	store.SetPage(1)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "a", last.Search)

	unsubscribe()
	store.SetSearch("b")
	assert.Equal(t, 1, calls)
}

func TestParamsNormalizeSearch(t *testing.T) {
	st := filter.State{Search: "  café ", Page: 2, PerPage: 10, Fields: map[string]string{"plant": "3"}}
	params := st.Params()
	assert.Equal(t, "café", params["search"])
	assert.Equal(t, 2, params["page"])
	assert.Equal(t, "3", params["plant"])
	assert.Equal(t, "", params["status"])
}

func TestParseHelpers(t *testing.T) {
	page, err := filter.ParsePage("3")
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	page, err = filter.ParsePage("")
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	_, err = filter.ParsePage("0")
	require.ErrorIs(t, err, filter.ErrInvalidNumber)
	_, err = filter.ParsePage("two")
	require.ErrorIs(t, err, filter.ErrInvalidNumber)

	per, err := filter.ParsePerPage("", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, per)
	_, err = filter.ParsePerPage("101", 10)
	require.ErrorIs(t, err, filter.ErrInvalidNumber)

	order, err := filter.ParseOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, filter.OrderAsc, order)
	_, err = filter.ParseOrder("sideways")
	require.ErrorIs(t, err, filter.ErrInvalidOrder)
}

func TestPersistRestoresEverythingButPage(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()

	first := filter.NewStore(iqcSpec())
	stop, err := filter.Persist(ctx, first, kv, nil)
	require.NoError(t, err)
	first.SetSearch("LOT-9")
	first.SetPerPage(25)
	first.SetStatus("pending")
	require.NoError(t, first.SetField("plant", "4"))
	first.NextPage()
	first.NextPage()
	stop()

	second := filter.NewStore(iqcSpec())
	_, err = filter.Persist(ctx, second, kv, nil)
	require.NoError(t, err)
	snap := second.Snapshot()
	assert.Equal(t, "LOT-9", snap.Search)
	assert.Equal(t, 25, snap.PerPage)
	assert.Equal(t, "pending", snap.Status)
	assert.Equal(t, "4", snap.Fields["plant"])
	assert.Equal(t, 1, snap.Page)
}

func TestPersistSkipsPageOnlyChanges(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	store := filter.NewStore(iqcSpec())
	_, err := filter.Persist(ctx, store, kv, nil)
	require.NoError(t, err)

	store.NextPage()
	_, ok, err := kv.Get(ctx, "filters:incoming-quality-checks")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistToRedisIgnoresGarbage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv := storage.NewRedis(client, "")
	require.NoError(t, mr.Set("qcm:local:filters:incoming-quality-checks", "{not json"))

	store := filter.NewStore(iqcSpec())
	_, err := filter.Persist(context.Background(), store, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, store.Defaults(), store.Snapshot())

	store.SetSearch("x")
	raw, err := mr.Get("qcm:local:filters:incoming-quality-checks")
	require.NoError(t, err)
	assert.JSONEq(t, `{"search":"x","per_page":10,"created_at_order":"DESC"}`, raw)
}

func TestPersistWithoutKeyIsNoop(t *testing.T) {
	spec := iqcSpec()
	spec.StorageKey = ""
	store := filter.NewStore(spec)
	stop, err := filter.Persist(context.Background(), store, storage.NewMemory(), nil)
	require.NoError(t, err)
	stop()
}
