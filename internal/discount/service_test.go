package discount

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	active    []Rule
	listCalls int
	expired   int64
}

func (f *fakeCatalog) ListActive(ctx context.Context) ([]Rule, error) {
	f.listCalls++
	return f.active, nil
}

func (f *fakeCatalog) List(ctx context.Context) ([]Rule, error) { return f.active, nil }

func (f *fakeCatalog) Get(ctx context.Context, id uuid.UUID) (Rule, error) {
	for _, r := range f.active {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, ErrNotFound
}

func (f *fakeCatalog) Create(ctx context.Context, r Rule) (Rule, error) {
	f.active = append(f.active, r)
	return r, nil
}

func (f *fakeCatalog) Update(ctx context.Context, r Rule) (Rule, error) {
	for i := range f.active {
		if f.active[i].ID == r.ID {
			f.active[i] = r
			return r, nil
		}
	}
	return Rule{}, ErrNotFound
}

func (f *fakeCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.active {
		if f.active[i].ID == id {
			f.active = append(f.active[:i], f.active[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeCatalog) DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error) {
	return f.expired, nil
}

func newTestService(t *testing.T, catalog *fakeCatalog) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{
		Store: catalog,
		Cache: NewCache(client, time.Minute),
		Log:   zerolog.Nop(),
		Now:   func() time.Time { return asOf },
	}, mr
}

func TestActiveRulesCacheAside(t *testing.T) {
	rule := activeRule(ScopeAllProducts, KindPercentage)
	catalog := &fakeCatalog{active: []Rule{rule}}
	svc, _ := newTestService(t, catalog)

	ctx := context.Background()
	first, err := svc.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.ActiveRules(ctx)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, catalog.listCalls, "second read should hit the cache")
}

func TestWritesInvalidateCache(t *testing.T) {
	rule := activeRule(ScopeAllProducts, KindPercentage)
	catalog := &fakeCatalog{active: []Rule{rule}}
	svc, mr := newTestService(t, catalog)

	ctx := context.Background()
	_, err := svc.ActiveRules(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(activeRulesKey))

	created := activeRule(ScopeAllProducts, KindFixed)
	created.FixedAmount = dec("5")
	_, err = svc.Create(ctx, created)
	require.NoError(t, err)
	require.False(t, mr.Exists(activeRulesKey), "create must drop the cached rule set")
}

func TestForItemResolvesAndObserves(t *testing.T) {
	rule := activeRule(ScopeProduct, KindPercentage)
	rule.ProductID = &prodID
	rule.Percentage = dec("25")
	catalog := &fakeCatalog{active: []Rule{rule}}
	svc, _ := newTestService(t, catalog)

	var outcomes []string
	svc.Observe = func(outcome string) { outcomes = append(outcomes, outcome) }

	ctx := context.Background()
	res, err := svc.ForItem(ctx, prodID, "", dec("100"), 2)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Applied.Amount.Equal(dec("50")))

	miss, err := svc.ForItem(ctx, otherID, "", dec("100"), 2)
	require.NoError(t, err)
	require.Nil(t, miss)
	require.Equal(t, []string{"matched", "none"}, outcomes)
}

func TestCreateRejectsMalformedRules(t *testing.T) {
	svc, _ := newTestService(t, &fakeCatalog{})
	ctx := context.Background()

	bad := activeRule(ScopeProduct, KindPercentage)
	bad.ProductID = nil
	_, err := svc.Create(ctx, bad)
	require.Error(t, err)

	over := activeRule(ScopeAllProducts, KindPercentage)
	over.Percentage = dec("150")
	_, err = svc.Create(ctx, over)
	require.Error(t, err)

	inverted := activeRule(ScopeAllProducts, KindPercentage)
	start := asOf
	end := asOf.AddDate(0, 0, -2)
	inverted.StartDate, inverted.EndDate = &start, &end
	_, err = svc.Create(ctx, inverted)
	require.Error(t, err)
}

func TestExpireSweepInvalidates(t *testing.T) {
	catalog := &fakeCatalog{expired: 3}
	svc, mr := newTestService(t, catalog)
	ctx := context.Background()

	_, err := svc.ActiveRules(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(activeRulesKey))

	n, err := svc.ExpireSweep(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.False(t, mr.Exists(activeRulesKey))
}
