package interaction

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/internal/infrastructure/persistence/memory"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingMediator struct {
	mu       sync.Mutex
	payloads []shared.Payload
}

func (m *recordingMediator) Notify(_ context.Context, _ string, _ shared.EventName, payload shared.Payload) shared.Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return shared.Delivery{NotificationID: "n", Delivered: 1}
}

// fixture seeds post 1 authored by user 7.
func fixture(t *testing.T, opts map[post.InteractionType]Options) (*Registry, *memory.Store, *recordingMediator) {
	t.Helper()

	store := memory.NewStore()
	_, err := store.Posts().Create(context.Background(), &post.Post{ID: 1, AuthorID: 7, Content: "hello"})
	require.NoError(t, err)

	med := &recordingMediator{}
	reg := NewRegistry(RegistryConfig{Mediator: med, Logger: quietLogger()})
	require.NoError(t, reg.Register(Defaults(store.Posts(), store.Interactions(), opts)...))

	return reg, store, med
}

func TestRegistry_LikeTogglesOnAndOff(t *testing.T) {
	ctx := context.Background()
	reg, store, med := fixture(t, nil)
	key := post.Key{PostID: 1, UserID: 2, Type: post.InteractionLike}

	out, err := reg.Toggle(ctx, post.InteractionLike, 1, 2)
	require.NoError(t, err)
	assert.True(t, out.Result.Active)
	exists, err := store.Interactions().Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	out, err = reg.Toggle(ctx, post.InteractionLike, 1, 2)
	require.NoError(t, err)
	assert.False(t, out.Result.Active)
	exists, err = store.Interactions().Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.Len(t, med.payloads, 2)
	assert.Equal(t, true, med.payloads[0][shared.KeyActive])
	assert.Equal(t, false, med.payloads[1][shared.KeyActive])
	assert.Equal(t, "like", med.payloads[0][shared.KeyType])
}

func TestRegistry_RoundTripLeavesNoRow(t *testing.T) {
	ctx := context.Background()

	for _, typ := range []post.InteractionType{post.InteractionLike, post.InteractionLove, post.InteractionSave} {
		t.Run(string(typ), func(t *testing.T) {
			reg, store, _ := fixture(t, nil)

			_, err := reg.Toggle(ctx, typ, 1, 3)
			require.NoError(t, err)
			_, err = reg.Toggle(ctx, typ, 1, 3)
			require.NoError(t, err)

			counts, err := store.Interactions().CountByPost(ctx, 1)
			require.NoError(t, err)
			assert.Zero(t, counts[typ])
		})
	}
}

func TestRegistry_UnsupportedTypeHasNoSideEffect(t *testing.T) {
	ctx := context.Background()
	reg, store, med := fixture(t, nil)
	before := store.Writes()

	_, err := reg.Toggle(ctx, "dislike", 1, 2)

	assert.ErrorIs(t, err, shared.ErrUnsupportedInteraction)
	assert.Equal(t, before, store.Writes())
	assert.Empty(t, med.payloads)

	_, err = reg.CanExecute(ctx, "dislike", 1, 2)
	assert.ErrorIs(t, err, shared.ErrUnsupportedInteraction)
}

func TestRegistry_MissingPostIsNotAllowed(t *testing.T) {
	ctx := context.Background()
	reg, store, med := fixture(t, nil)
	before := store.Writes()

	ok, err := reg.CanExecute(ctx, post.InteractionSave, 404, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reg.Toggle(ctx, post.InteractionSave, 404, 2)
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
	assert.Equal(t, before, store.Writes())
	assert.Empty(t, med.payloads)
}

func TestRegistry_SelfReactionFollowsOptions(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := fixture(t, map[post.InteractionType]Options{
		post.InteractionLike: {AllowSelf: false},
	})

	_, err := reg.Toggle(ctx, post.InteractionLike, 1, 7)
	assert.ErrorIs(t, err, shared.ErrNotAllowed)

	out, err := reg.Toggle(ctx, post.InteractionSave, 1, 7)
	require.NoError(t, err)
	assert.True(t, out.Result.Active)

	out, err = reg.Toggle(ctx, post.InteractionLike, 1, 8)
	require.NoError(t, err)
	assert.True(t, out.Result.Active)
}

func TestStrategy_ExecuteEnforcesPreconditionsItself(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_, err := store.Posts().Create(ctx, &post.Post{ID: 1, AuthorID: 7})
	require.NoError(t, err)

	s := NewLove(store.Posts(), store.Interactions(), Options{AllowSelf: false})

	_, err = s.Execute(ctx, 1, 7)
	assert.True(t, shared.IsNotAllowed(err))

	exists, err := store.Interactions().Exists(ctx, post.Key{PostID: 1, UserID: 7, Type: post.InteractionLove})
	require.NoError(t, err)
	assert.False(t, exists)
}

type failingPosts struct {
	post.Repository
	err error
}

func (f failingPosts) Find(context.Context, int64) (*post.Post, error) {
	return nil, f.err
}

func TestRegistry_StorageFaultPropagates(t *testing.T) {
	fault := shared.StorageFault("posts", "Find", errors.New("connection refused"))
	store := memory.NewStore()

	reg := NewRegistry(RegistryConfig{Logger: quietLogger()})
	require.NoError(t, reg.Register(NewLike(failingPosts{err: fault}, store.Interactions(), DefaultOptions())))

	_, err := reg.Toggle(context.Background(), post.InteractionLike, 1, 2)
	assert.True(t, shared.IsStorageFault(err))
	assert.False(t, shared.IsNotAllowed(err))
}

// gatedLedger blocks every Toggle until the gate is closed.
type gatedLedger struct {
	post.InteractionRepository
	gate  chan struct{}
	calls atomic.Int32
}

func (g *gatedLedger) Toggle(ctx context.Context, key post.Key) (bool, error) {
	g.calls.Add(1)
	<-g.gate
	return g.InteractionRepository.Toggle(ctx, key)
}

func TestRegistry_ConcurrentIdenticalTogglesLeaveOneRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_, err := store.Posts().Create(ctx, &post.Post{ID: 1, AuthorID: 7})
	require.NoError(t, err)

	ledger := &gatedLedger{InteractionRepository: store.Interactions(), gate: make(chan struct{})}
	reg := NewRegistry(RegistryConfig{Logger: quietLogger()})
	require.NoError(t, reg.Register(NewLike(store.Posts(), ledger, DefaultOptions())))

	results := make([]Outcome, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = reg.Toggle(ctx, post.InteractionLike, 1, 2)
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	close(ledger.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, results[0].Result.Active)
	assert.True(t, results[1].Result.Active)
	assert.Equal(t, int32(1), ledger.calls.Load())

	counts, err := store.Interactions().CountByPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[post.InteractionLike])
}

func TestRegistry_CancelledCallerDoesNotFailJoinedToggle(t *testing.T) {
	store := memory.NewStore()
	_, err := store.Posts().Create(context.Background(), &post.Post{ID: 1, AuthorID: 7})
	require.NoError(t, err)

	ledger := &gatedLedger{InteractionRepository: store.Interactions(), gate: make(chan struct{})}
	reg := NewRegistry(RegistryConfig{Logger: quietLogger()})
	require.NoError(t, reg.Register(NewLike(store.Posts(), ledger, DefaultOptions())))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := reg.Toggle(firstCtx, post.InteractionLike, 1, 2)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return ledger.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		out Outcome
		err error
	}
	second := make(chan result, 1)
	go func() {
		out, err := reg.Toggle(context.Background(), post.InteractionLike, 1, 2)
		second <- result{out, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(ledger.gate)
	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.out.Result.Active)
	assert.Equal(t, int32(1), ledger.calls.Load())

	exists, err := store.Interactions().Exists(context.Background(), post.Key{PostID: 1, UserID: 2, Type: post.InteractionLike})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRegistry_RegisterValidates(t *testing.T) {
	reg := NewRegistry(RegistryConfig{})

	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(NewToggleStrategy("", nil, nil, DefaultOptions())))

	require.NoError(t, reg.Register(NewToggleStrategy("bookmark", nil, nil, DefaultOptions())))
	assert.Equal(t, []post.InteractionType{"bookmark"}, reg.Types())
}
