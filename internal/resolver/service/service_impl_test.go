package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	commanddomain "github.com/TechharaInc/Tanaka/internal/command/domain"
	commandrepo "github.com/TechharaInc/Tanaka/internal/command/repository"
	commandsvc "github.com/TechharaInc/Tanaka/internal/command/service"
	counterdomain "github.com/TechharaInc/Tanaka/internal/counter/domain"
	counterrepo "github.com/TechharaInc/Tanaka/internal/counter/repository"
	"github.com/TechharaInc/Tanaka/internal/resolver/domain"
	"github.com/TechharaInc/Tanaka/pkg/db"
	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Fakes --

type fakeCommands struct {
	mu   sync.Mutex
	rows map[string][]string
	err  map[string]error
}

func (f *fakeCommands) Insert(ctx context.Context, guildID, name, response, author string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[guildID+"/"+name] = append(f.rows[guildID+"/"+name], response)
	return nil
}

func (f *fakeCommands) Lookup(ctx context.Context, guildID, name string) ([]commanddomain.Command, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err[name]; err != nil {
		return nil, err
	}
	var out []commanddomain.Command
	for _, r := range f.rows[guildID+"/"+name] {
		out = append(out, commanddomain.Command{GuildID: guildID, Name: name, Response: r})
	}
	return out, nil
}

func (f *fakeCommands) Delete(ctx context.Context, guildID, name string) (int64, error) {
	return 0, errors.New("not used")
}

type fakeCounters struct {
	mu       sync.Mutex
	scores   map[string]int64
	aliases  map[string]string
	incrErr  error
	aliasErr error
}

func (f *fakeCounters) Incr(ctx context.Context, guildID, name string) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores[name]++
	return nil
}

func (f *fakeCounters) Forget(ctx context.Context, guildID, name string) error { return nil }

func (f *fakeCounters) Top(ctx context.Context, guildID string, k int) ([]counterdomain.Score, error) {
	return nil, nil
}

func (f *fakeCounters) AliasSet(ctx context.Context, guildID, src, dst string) error {
	f.aliases[src] = dst
	return nil
}

func (f *fakeCounters) AliasGet(ctx context.Context, guildID, src string) (string, bool, error) {
	if f.aliasErr != nil {
		return "", false, f.aliasErr
	}
	dst, ok := f.aliases[src]
	return dst, ok, nil
}

func (f *fakeCounters) AliasDelete(ctx context.Context, guildID, src string) error { return nil }

func newFakes() (*fakeCommands, *fakeCounters) {
	return &fakeCommands{rows: map[string][]string{}, err: map[string]error{}},
		&fakeCounters{scores: map[string]int64{}, aliases: map[string]string{}}
}

func newService(commands commanddomain.Store, counters counterdomain.Store) *Service {
	return New(Params{Commands: commands, Counters: counters, Log: zap.NewNop()}).(*Service)
}

// -- Tests --

func TestResolveDirectHit(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/hi"] = []string{"hello"}
	svc := newService(commands, counters)

	res, ok := svc.Resolve(context.Background(), "G1", "hi")
	require.True(t, ok)
	assert.Equal(t, domain.Resolution{GuildID: "G1", Name: "hi", Response: "hello"}, res)
	assert.Empty(t, counters.scores, "resolve alone never touches the scoreboard")

	svc.Record(context.Background(), res)
	assert.EqualValues(t, 1, counters.scores["hi"])
}

func TestResolvePicksEveryVariantIndex(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/greet"] = []string{"a", "b", "c"}
	svc := newService(commands, counters)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		svc.intn = func(n int) int {
			require.Equal(t, 3, n)
			return i
		}
		res, ok := svc.Resolve(context.Background(), "G1", "greet")
		require.True(t, ok)
		seen[res.Response] = true
	}
	assert.Len(t, seen, 3)
}

func TestResolveDistributionIsRoughlyUniform(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/greet"] = []string{"hello", "hi", "hola"}
	svc := newService(commands, counters)

	hits := map[string]int{}
	for i := 0; i < 1000; i++ {
		res, ok := svc.ResolveAndRecord(context.Background(), "G1", "greet")
		require.True(t, ok)
		hits[res.Response]++
	}

	require.Len(t, hits, 3)
	for variant, n := range hits {
		assert.Greater(t, n, 200, variant)
		assert.Less(t, n, 470, variant)
	}
	assert.EqualValues(t, 1000, counters.scores["greet"])
}

func TestResolveAliasCreditsTarget(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/joke"] = []string{"why did..."}
	counters.aliases["j"] = "joke"
	svc := newService(commands, counters)

	res, ok := svc.ResolveAndRecord(context.Background(), "G1", "j")
	require.True(t, ok)
	assert.Equal(t, "why did...", res.Response)
	assert.Equal(t, "joke", res.Name)
	assert.EqualValues(t, 1, counters.scores["joke"])
	assert.NotContains(t, counters.scores, "j")
}

func TestResolveDirectHitShadowsAlias(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/j"] = []string{"direct"}
	commands.rows["G1/joke"] = []string{"aliased"}
	counters.aliases["j"] = "joke"
	svc := newService(commands, counters)

	res, ok := svc.Resolve(context.Background(), "G1", "j")
	require.True(t, ok)
	assert.Equal(t, "direct", res.Response)
	assert.Equal(t, "j", res.Name)
}

func TestResolveFollowsOneHopOnly(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/c"] = []string{"deep"}
	counters.aliases["a"] = "b"
	counters.aliases["b"] = "c"
	svc := newService(commands, counters)

	_, ok := svc.ResolveAndRecord(context.Background(), "G1", "a")
	assert.False(t, ok)
	assert.Empty(t, counters.scores)

	counters.aliases["x"] = "y"
	counters.aliases["y"] = "x"
	_, ok = svc.Resolve(context.Background(), "G1", "x")
	assert.False(t, ok)
}

func TestResolveDanglingAliasIsSilent(t *testing.T) {
	commands, counters := newFakes()
	counters.aliases["j"] = "ghost"
	svc := newService(commands, counters)

	_, ok := svc.ResolveAndRecord(context.Background(), "G1", "j")
	assert.False(t, ok)
	assert.Empty(t, counters.scores)
}

func TestResolveUnknownIsEmpty(t *testing.T) {
	commands, counters := newFakes()
	svc := newService(commands, counters)

	_, ok := svc.ResolveAndRecord(context.Background(), "G1", "nope")
	assert.False(t, ok)
	assert.Empty(t, counters.scores)
}

func TestResolveStorageFailureYieldsNothing(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/hi"] = []string{"hello"}
	commands.err["hi"] = commanddomain.ErrStorage
	svc := newService(commands, counters)

	_, ok := svc.ResolveAndRecord(context.Background(), "G1", "hi")
	assert.False(t, ok)
	assert.Empty(t, counters.scores)
}

func TestResolveAliasStoreFailureYieldsNothing(t *testing.T) {
	commands, counters := newFakes()
	counters.aliasErr = counterdomain.ErrCounter
	svc := newService(commands, counters)

	_, ok := svc.Resolve(context.Background(), "G1", "j")
	assert.False(t, ok)
}

func TestRecordSwallowsCounterFailure(t *testing.T) {
	commands, counters := newFakes()
	commands.rows["G1/hi"] = []string{"hello"}
	counters.incrErr = counterdomain.ErrCounter
	svc := newService(commands, counters)

	res, ok := svc.ResolveAndRecord(context.Background(), "G1", "hi")
	require.True(t, ok)
	assert.Equal(t, "hello", res.Response)
}

func TestResolveAgainstRealStores(t *testing.T) {
	ctx := context.Background()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&commanddomain.Command{}))
	commands := commandsvc.New(commandsvc.Params{DB: conn, Log: zap.NewNop(), Repo: commandrepo.Provide()})

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	counters := counterrepo.New(client)

	svc := newService(commands, counters)

	require.NoError(t, commands.Insert(ctx, "G1", "hi", "hello", "u1"))
	res, ok := svc.ResolveAndRecord(ctx, "G1", "hi")
	require.True(t, ok)
	assert.Equal(t, "hello", res.Response)

	require.NoError(t, commands.Insert(ctx, "G1", "joke", "why did...", "u1"))
	require.NoError(t, counters.AliasSet(ctx, "G1", "j", "joke"))
	res, ok = svc.ResolveAndRecord(ctx, "G1", "j")
	require.True(t, ok)
	assert.Equal(t, "why did...", res.Response)

	top, err := counters.Top(ctx, "G1", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []counterdomain.Score{{Name: "hi", Score: 1}, {Name: "joke", Score: 1}}, top)
}
