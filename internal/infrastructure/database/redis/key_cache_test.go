package redis

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/internal/testutil"
	pkgerrors "github.com/turtacn/SymRxn/pkg/errors"
)

const (
	testProbe   = "C1=CC=CC=C1"
	testPattern = "([cH1:1]).([cH1:2])>>[cH1:1]/C=C/[cH1:2]"
)

type KeyCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache *KeyCache
	log   *testutil.MockLogger
}

func (s *KeyCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.log = testutil.NewMockLogger()
	s.cache = NewKeyCache(newClient(db, logging.NewNopLogger()), s.log,
		WithPrefix("test:"), WithTTL(time.Hour))
}

func (s *KeyCacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *KeyCacheTestSuite) TestRedisKey() {
	k := s.cache.RedisKey(testProbe, testPattern)
	s.True(strings.HasPrefix(k, "test:"))
	s.Len(k, len("test:")+36)
	s.Equal(k, s.cache.RedisKey(testProbe, testPattern))
	s.NotEqual(k, s.cache.RedisKey("c1ccncc1", testPattern))
}

func (s *KeyCacheTestSuite) TestLookup_Hit() {
	s.mock.ExpectGet(s.cache.RedisKey(testProbe, testPattern)).SetVal("C(=Cc1ccccc1)c1ccccc1")

	key, ok, err := s.cache.Lookup(context.Background(), testProbe, testPattern)
	s.NoError(err)
	s.True(ok)
	s.Equal(reaction.Key("C(=Cc1ccccc1)c1ccccc1"), key)
	s.True(s.log.HasMessage("debug", "reaction key cache hit"))
}

func (s *KeyCacheTestSuite) TestLookup_Miss() {
	s.mock.ExpectGet(s.cache.RedisKey(testProbe, testPattern)).RedisNil()

	key, ok, err := s.cache.Lookup(context.Background(), testProbe, testPattern)
	s.NoError(err)
	s.False(ok)
	s.Empty(key)
}

func (s *KeyCacheTestSuite) TestLookup_Error() {
	s.mock.ExpectGet(s.cache.RedisKey(testProbe, testPattern)).SetErr(stderrors.New("connection reset"))

	_, ok, err := s.cache.Lookup(context.Background(), testProbe, testPattern)
	s.False(ok)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.Empty(s.log.Find("warn", ""), "the caller logs cache failures")
	s.Empty(s.log.Find("error", ""))
}

func (s *KeyCacheTestSuite) TestStore() {
	s.mock.ExpectSet(s.cache.RedisKey(testProbe, testPattern), "CCO", time.Hour).SetVal("OK")
	s.NoError(s.cache.Store(context.Background(), testProbe, testPattern, "CCO"))
}

func (s *KeyCacheTestSuite) TestStore_Error() {
	s.mock.ExpectSet(s.cache.RedisKey(testProbe, testPattern), "CCO", time.Hour).SetErr(stderrors.New("READONLY"))
	err := s.cache.Store(context.Background(), testProbe, testPattern, "CCO")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.Empty(s.log.Find("warn", ""))
}

func TestKeyCacheTestSuite(t *testing.T) {
	suite.Run(t, new(KeyCacheTestSuite))
}

func TestKeyCache_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()

	cache := NewKeyCache(client, nil, WithTTL(time.Minute))
	ctx := context.Background()

	_, ok, err := cache.Lookup(ctx, testProbe, testPattern)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(ctx, testProbe, testPattern, "CCO"))
	key, ok, err := cache.Lookup(ctx, testProbe, testPattern)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, reaction.Key("CCO"), key)

	redisKey := cache.RedisKey(testProbe, testPattern)
	assert.True(t, strings.HasPrefix(redisKey, config.DefaultCachePrefix))
	assert.Equal(t, time.Minute, mr.TTL(redisKey))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Lookup(ctx, testProbe, testPattern)
	require.NoError(t, err)
	assert.False(t, ok, "expired keys miss")
}

func TestKeyCache_ConcurrentLookups(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()

	cache := NewKeyCache(client, nil)
	require.NoError(t, cache.Store(context.Background(), testProbe, testPattern, "CCO"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key, ok, err := cache.Lookup(context.Background(), testProbe, testPattern)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, reaction.Key("CCO"), key)
		}()
	}
	wg.Wait()
}

//Personal.AI order the ending
