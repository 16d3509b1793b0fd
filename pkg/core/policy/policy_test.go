package policy

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenfee/feemap/pkg/core/storage"
	"github.com/tokenfee/feemap/pkg/core/storage/dbconfig"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/token"
	"go.uber.org/zap/zaptest"
)

type failingStore struct {
	*storage.MemoryStore
}

func (s failingStore) PutChangeSet(map[string][]byte) error {
	return errors.New("disk is on fire")
}

func newTestPolicy(t *testing.T, s storage.Store) *Policy {
	p, err := New(s, zaptest.NewLogger(t))
	require.NoError(t, err)
	return p
}

func TestNewDefault(t *testing.T) {
	p := newTestPolicy(t, storage.NewMemoryStore())
	require.True(t, p.FeeMap().Equals(feemap.Default()))
	require.Equal(t, feemap.Default().Digest(), p.Digest())

	fee, ok := p.MinimumFee(token.MOB)
	require.True(t, ok)
	require.Equal(t, token.MobMinimumFee, fee)
	_, ok = p.MinimumFee(2)
	require.False(t, ok)

	require.Equal(t, feemap.Default().ResponderID("1.2.3.4:5"), p.ResponderID("1.2.3.4:5"))
}

func TestNilLogger(t *testing.T) {
	p, err := New(storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	_, err = p.Apply(map[token.ID]uint64{})
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	p := newTestPolicy(t, storage.NewMemoryStore())
	before := p.Digest()

	changed, err := p.Apply(map[token.ID]uint64{token.MOB: 100, 2: 2000})
	require.NoError(t, err)
	require.True(t, changed)
	require.NotEqual(t, before, p.Digest())

	fee, ok := p.MinimumFee(2)
	require.True(t, ok)
	require.Equal(t, uint64(2000), fee)

	changed, err = p.Apply(map[token.ID]uint64{token.MOB: 100, 2: 2000})
	require.NoError(t, err)
	require.False(t, changed)

	changed, err = p.Reset()
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, before, p.Digest())

	changed, err = p.Reset()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestApplyInvalid(t *testing.T) {
	p := newTestPolicy(t, storage.NewMemoryStore())
	_, err := p.Apply(map[token.ID]uint64{token.MOB: 100, 2: 2000})
	require.NoError(t, err)
	digest := p.Digest()

	changed, err := p.Apply(map[token.ID]uint64{token.MOB: 100, 2: 0})
	require.ErrorIs(t, err, feemap.ErrInvalidFee)
	require.False(t, changed)
	require.Equal(t, digest, p.Digest())

	changed, err = p.Apply(map[token.ID]uint64{2: 10})
	require.ErrorIs(t, err, feemap.ErrMissingFee)
	require.False(t, changed)
	require.Equal(t, digest, p.Digest())
}

func TestApplyStorageFailure(t *testing.T) {
	p := newTestPolicy(t, failingStore{storage.NewMemoryStore()})
	digest := p.Digest()

	changed, err := p.Apply(map[token.ID]uint64{token.MOB: 1})
	require.Error(t, err)
	require.False(t, changed)
	require.Equal(t, digest, p.Digest())
}

func TestFeeMapIsSnapshot(t *testing.T) {
	p := newTestPolicy(t, storage.NewMemoryStore())
	snap := p.FeeMap()
	require.NoError(t, snap.UpdateOrDefault(map[token.ID]uint64{token.MOB: 1}))
	require.Equal(t, feemap.Default().Digest(), p.Digest())
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.bolt")
	open := func() storage.Store {
		s, err := storage.NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: path})
		require.NoError(t, err)
		return s
	}

	s := open()
	p := newTestPolicy(t, s)
	_, err := p.Apply(map[token.ID]uint64{token.MOB: 100, 2: 2000, 30: 300})
	require.NoError(t, err)
	_, err = p.Apply(map[token.ID]uint64{token.MOB: 100, 30: 400})
	require.NoError(t, err)
	expected := p.FeeMap()
	require.NoError(t, s.Close())

	s = open()
	p = newTestPolicy(t, s)
	require.True(t, expected.Equals(p.FeeMap()))
	_, ok := p.MinimumFee(2)
	require.False(t, ok)
	require.NoError(t, s.Close())
}

func TestLoadCorrupted(t *testing.T) {
	s := storage.NewMemoryStore()
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		string(entryKey(token.MOB)): {1, 2, 3},
	}))
	_, err := New(s, nil)
	require.ErrorIs(t, err, ErrCorruptedEntry)

	s = storage.NewMemoryStore()
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		string(entryKey(token.MOB)): {1, 0, 0, 0, 0, 0, 0, 0, 0},
	}))
	_, err = New(s, nil)
	require.ErrorIs(t, err, ErrCorruptedEntry)

	s = storage.NewMemoryStore()
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		string(entryKey(5)): {1, 0, 0, 0, 0, 0, 0, 0},
	}))
	_, err = New(s, nil)
	require.ErrorIs(t, err, feemap.ErrMissingFee)
}

func TestEntryKeyOrder(t *testing.T) {
	// Big-endian keys make store order match token order.
	require.Equal(t, []byte{0x10, 0, 0, 0x01, 0x00}, entryKey(256))
	require.Less(t, string(entryKey(255)), string(entryKey(256)))
}

func TestConcurrentAccess(t *testing.T) {
	p := newTestPolicy(t, storage.NewMemoryStore())
	maps := []map[token.ID]uint64{
		{token.MOB: 100, 2: 2000},
		{token.MOB: 100, 2: 300},
		nil,
	}
	digests := make(map[string]bool)
	for _, m := range maps {
		if m == nil {
			digests[feemap.Default().Digest()] = true
			continue
		}
		digests[feemap.DigestOf(m)] = true
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := p.Apply(maps[(i+j)%len(maps)])
				require.NoError(t, err)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				fm := p.FeeMap()
				require.True(t, digests[fm.Digest()])
				require.Equal(t, feemap.DigestOf(fm.Map()), fm.Digest())
			}
		}()
	}
	wg.Wait()
}

func TestStoreVersion(t *testing.T) {
	s := storage.NewMemoryStore()
	p := newTestPolicy(t, s)
	_, err := s.Get(storage.SYSVersion.Bytes())
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	_, err = p.Apply(map[token.ID]uint64{token.MOB: 100})
	require.NoError(t, err)
	v, err := s.Get(storage.SYSVersion.Bytes())
	require.NoError(t, err)
	require.Equal(t, StoreVersion, string(v))

	stored, err := s.Get(entryKey(token.MOB))
	require.NoError(t, err)
	require.Equal(t, []byte{100, 0, 0, 0, 0, 0, 0, 0}, stored)

	p = newTestPolicy(t, s)
	fee, ok := p.MinimumFee(token.MOB)
	require.True(t, ok)
	require.Equal(t, uint64(100), fee)

	require.NoError(t, s.PutChangeSet(map[string][]byte{
		string(storage.SYSVersion.Bytes()): []byte("feemap/0"),
	}))
	_, err = New(s, nil)
	require.ErrorIs(t, err, ErrIncompatibleVersion)
}
