package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"message-api/internal/model"
	"message-api/internal/repository"
	"message-api/internal/testutil"
)

// fakeCache mirrors the redis cache: lists are stored per generation and
// Invalidate moves to a new one.
type fakeCache struct {
	gen         int64
	lists       map[int64][]model.Message
	getErr      error
	sets        int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{lists: map[int64][]model.Message{}}
}

func (c *fakeCache) GetList(context.Context) ([]model.Message, bool, int64, error) {
	if c.getErr != nil {
		return nil, false, 0, c.getErr
	}
	list, ok := c.lists[c.gen]
	return list, ok, c.gen, nil
}

func (c *fakeCache) SetList(_ context.Context, gen int64, messages []model.Message) error {
	c.lists[gen] = messages
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.gen++
	c.invalidated++
	return nil
}

func (c *fakeCache) warm() bool {
	_, ok := c.lists[c.gen]
	return ok
}

// writeDuringList runs a write once, right after the store list returns and
// before the service fills the cache.
type writeDuringList struct {
	MessageStore
	write func()
}

func (s *writeDuringList) List(ctx context.Context) ([]model.Message, error) {
	messages, err := s.MessageStore.List(ctx)
	if s.write != nil {
		write := s.write
		s.write = nil
		write()
	}
	return messages, err
}

type fakePublisher struct {
	events []model.MessageEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event model.MessageEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*MessageService, *fakeCache, *fakePublisher) {
	t.Helper()
	cache := newFakeCache()
	publisher := &fakePublisher{}
	store := repository.NewMessageRepository(testutil.NewDB(t))
	svc := NewMessageService(store, cache, publisher, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc, cache, publisher
}

func TestMessageService_ListEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, messages)
	require.Empty(t, messages)
}

func TestMessageService_CreateRequiresBothFields(t *testing.T) {
	ctx := context.Background()
	svc, _, publisher := newTestService(t)

	cases := map[string]CreateMessageInput{
		"missing body":     {Username: strPtr("alice")},
		"missing username": {Body: strPtr("hello")},
		"blank body":       {Body: strPtr("   "), Username: strPtr("alice")},
		"empty username":   {Body: strPtr("hello"), Username: strPtr("")},
		"nothing":          {},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	messages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Empty(t, publisher.events)
}

func TestMessageService_CreateInvalidatesCacheAndPublishes(t *testing.T) {
	ctx := context.Background()
	svc, cache, publisher := newTestService(t)

	// warm the cache with the empty list
	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.True(t, cache.warm())

	created, err := svc.Create(ctx, CreateMessageInput{Body: strPtr("hello"), Username: strPtr("alice")})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, 1, cache.invalidated)

	require.Len(t, publisher.events, 1)
	require.Equal(t, model.ActionCreated, publisher.events[0].Action)
	require.Equal(t, created.ID, publisher.events[0].MessageID)

	messages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, created.ID, messages[0].ID)
}

func TestMessageService_ListServesCacheHit(t *testing.T) {
	svc, cache, _ := newTestService(t)
	cache.lists[0] = []model.Message{{ID: 1, Body: "cached", Username: "x"}}

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "cached", messages[0].Body)
	require.Zero(t, cache.sets)
}

func TestMessageService_ListFallsBackOnCacheError(t *testing.T) {
	svc, cache, _ := newTestService(t)
	cache.getErr = errors.New("redis down")

	messages, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestMessageService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _, publisher := newTestService(t)

	created, err := svc.Create(ctx, CreateMessageInput{Body: strPtr("before"), Username: strPtr("alice")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateMessageInput{ID: created.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, UpdateMessageInput{ID: created.ID + 100, Body: strPtr("x")})
	require.ErrorIs(t, err, ErrMessageNotFound)

	updated, err := svc.Update(ctx, UpdateMessageInput{ID: created.ID, Body: strPtr("after")})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "after", updated.Body)
	require.Equal(t, created.Username, updated.Username)
	require.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	require.Len(t, publisher.events, 2)
	require.Equal(t, model.ActionUpdated, publisher.events[1].Action)
	require.Equal(t, "after", publisher.events[1].Body)
}

func TestMessageService_UpdateValidatesBeforeLookup(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), UpdateMessageInput{ID: 12345})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMessageService_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc, _, publisher := newTestService(t)

	created, err := svc.Create(ctx, CreateMessageInput{Body: strPtr("bye"), Username: strPtr("bob")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrMessageNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 0), ErrMessageNotFound)

	messages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Len(t, publisher.events, 2)
	require.Equal(t, model.ActionDeleted, publisher.events[1].Action)
	require.Equal(t, created.ID, publisher.events[1].MessageID)
	require.Equal(t, "bye", publisher.events[1].Body)
	require.Equal(t, "bob", publisher.events[1].Username)
}

func TestMessageService_WriteDuringListFillIsNotServed(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	store := &writeDuringList{MessageStore: repository.NewMessageRepository(testutil.NewDB(t))}
	svc := NewMessageService(store, cache, nil, nil)

	var created *model.Message
	store.write = func() {
		var err error
		created, err = svc.Create(ctx, CreateMessageInput{Body: strPtr("late"), Username: strPtr("gina")})
		require.NoError(t, err)
	}

	messages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.NotNil(t, created)

	messages, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, created.ID, messages[0].ID)

	deleted := created.ID
	store.write = func() {
		require.NoError(t, svc.Delete(ctx, deleted))
	}
	require.NoError(t, cache.Invalidate(ctx))

	messages, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	messages, err = svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestMessageService_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, _, publisher := newTestService(t)
	publisher.err = errors.New("broker unreachable")

	created, err := svc.Create(context.Background(), CreateMessageInput{Body: strPtr("hi"), Username: strPtr("eve")})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestMessageService_WorksWithoutCacheOrPublisher(t *testing.T) {
	ctx := context.Background()
	svc := NewMessageService(repository.NewMessageRepository(testutil.NewDB(t)), nil, nil, nil)

	created, err := svc.Create(ctx, CreateMessageInput{Body: strPtr("plain"), Username: strPtr("frank")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
}
