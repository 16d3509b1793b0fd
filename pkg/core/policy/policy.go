/*
Package policy keeps the node's current fee map. It synchronizes access to it,
persists it in the node's store and exports its state via metrics.
*/
package policy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/tokenfee/feemap/pkg/core/storage"
	"github.com/tokenfee/feemap/pkg/feemap"
	"github.com/tokenfee/feemap/pkg/io"
	"github.com/tokenfee/feemap/pkg/token"
	"go.uber.org/zap"
)

// StoreVersion is the fee map storage schema version written along with the
// fee map.
const StoreVersion = "feemap/1"

var (
	// ErrCorruptedEntry is returned when a stored fee map entry can't be decoded.
	ErrCorruptedEntry = errors.New("corrupted fee map entry")
	// ErrIncompatibleVersion is returned when the store contains data of an
	// unknown schema version.
	ErrIncompatibleVersion = errors.New("incompatible storage schema version")
)

// Policy is a thread-safe holder of the current fee map.
type Policy struct {
	lock  sync.RWMutex
	fees  *feemap.FeeMap
	store storage.Store
	log   *zap.Logger
}

// New creates a Policy using the fee map persisted in the given store. The
// default fee map is used when there is none.
func New(store storage.Store, log *zap.Logger) (*Policy, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fees, err := load(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee map: %w", err)
	}
	p := &Policy{
		fees:  fees,
		store: store,
		log:   log,
	}
	updateFeeMapMetrics(fees)
	log.Info("fee map loaded",
		zap.Int("tokens", fees.Len()),
		zap.String("digest", fees.Digest()))
	return p, nil
}

func entryKey(id token.ID) []byte {
	w := io.NewBufBinWriter()
	w.WriteB(byte(storage.STFeeMap))
	w.WriteU32BE(uint32(id))
	return w.Bytes()
}

func checkVersion(store storage.Store) error {
	v, err := store.Get(storage.SYSVersion.Bytes())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read storage version: %w", err)
	}
	if string(v) != StoreVersion {
		return fmt.Errorf("%w: %q, expected %q", ErrIncompatibleVersion, v, StoreVersion)
	}
	return nil
}

func load(store storage.Store) (*feemap.FeeMap, error) {
	if err := checkVersion(store); err != nil {
		return nil, err
	}
	var (
		entries []feemap.Entry
		err     error
	)
	store.Seek(storage.SeekRange{Prefix: storage.STFeeMap.Bytes()}, func(k, v []byte) bool {
		r := io.NewBinReaderFromBuf(v)
		fee := r.ReadU64LE()
		if len(k) != 5 || r.Err != nil || r.Len() != 0 {
			err = fmt.Errorf("%w: key %x", ErrCorruptedEntry, k)
			return false
		}
		entries = append(entries, feemap.Entry{
			Token: token.ID(binary.BigEndian.Uint32(k[1:])),
			Fee:   fee,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return feemap.Default(), nil
	}
	return feemap.NewFromEntries(entries...)
}

// persist replaces the stored fee map contents of old with fees.
func (p *Policy) persist(old, fees *feemap.FeeMap) error {
	puts := make(map[string][]byte, old.Len()+fees.Len()+1)
	puts[string(storage.SYSVersion.Bytes())] = []byte(StoreVersion)
	old.Iterate(func(id token.ID, _ uint64) bool {
		puts[string(entryKey(id))] = nil
		return true
	})
	w := io.NewBufBinWriter()
	fees.Iterate(func(id token.ID, fee uint64) bool {
		w.Reset()
		w.WriteU64LE(fee)
		puts[string(entryKey(id))] = bytes.Clone(w.Bytes())
		return true
	})
	return p.store.PutChangeSet(puts)
}

// FeeMap returns a copy of the current fee map.
func (p *Policy) FeeMap() *feemap.FeeMap {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.fees.Copy()
}

// MinimumFee returns the minimum fee for the given token and whether it's set.
func (p *Policy) MinimumFee(id token.ID) (uint64, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.fees.Fee(id)
}

// Digest returns the current fee map digest.
func (p *Policy) Digest() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.fees.Digest()
}

// ResponderID returns the given responder ID suffixed with the current fee map
// digest.
func (p *Policy) ResponderID(base feemap.ResponderID) feemap.ResponderID {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.fees.ResponderID(base)
}

// Apply replaces the current fee map with the given fees or with the default
// one if fees is nil. It returns whether the fee map contents has changed. An
// invalid fee map or a storage failure leave the current fee map intact.
func (p *Policy) Apply(fees map[token.ID]uint64) (bool, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	updated := p.fees.Copy()
	if err := updated.UpdateOrDefault(fees); err != nil {
		feeMapRejected.Inc()
		p.log.Warn("fee map update rejected", zap.Error(err))
		return false, err
	}
	if updated.Equals(p.fees) {
		p.log.Debug("fee map is unchanged", zap.String("digest", updated.Digest()))
		return false, nil
	}
	if err := p.persist(p.fees, updated); err != nil {
		p.log.Error("failed to persist fee map", zap.Error(err))
		return false, fmt.Errorf("failed to persist fee map: %w", err)
	}
	p.log.Info("fee map updated",
		zap.String("old digest", p.fees.Digest()),
		zap.String("new digest", updated.Digest()),
		zap.Int("tokens", updated.Len()))
	p.fees = updated
	feeMapUpdates.Inc()
	updateFeeMapMetrics(updated)
	return true, nil
}

// Reset restores the default fee map.
func (p *Policy) Reset() (bool, error) {
	return p.Apply(nil)
}
