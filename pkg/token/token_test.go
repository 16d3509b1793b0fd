package token

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenfee/feemap/pkg/io"
)

func TestMob(t *testing.T) {
	var m Token = Mob{}
	require.Equal(t, MOB, m.ID())
	require.Equal(t, ID(0), m.ID())
	require.Equal(t, uint64(400_000_000), m.MinimumFee())
	require.Equal(t, "MOB", m.String())
}

func TestIDString(t *testing.T) {
	require.Equal(t, "0", MOB.String())
	require.Equal(t, "30", ID(30).String())
	require.Equal(t, "4294967295", ID(0xffffffff).String())
}

func TestIDOrdering(t *testing.T) {
	require.True(t, MOB < ID(1))
	require.True(t, ID(2) < ID(30))
	require.Equal(t, ID(7), ID(7))

	m := map[ID]uint64{MOB: 1, 2: 3}
	require.Equal(t, uint64(3), m[ID(2)])
}

func TestIDEncodeDecode(t *testing.T) {
	id := ID(0x01020304)
	w := io.NewBufBinWriter()
	id.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)
	data := w.Bytes()
	require.Equal(t, []byte{4, 3, 2, 1}, data)

	var actual ID
	r := io.NewBinReaderFromBuf(data)
	actual.DecodeBinary(r)
	require.NoError(t, r.Err)
	require.Equal(t, id, actual)

	r = io.NewBinReaderFromBuf([]byte{1, 2})
	actual.DecodeBinary(r)
	require.Error(t, r.Err)
}

func TestLookup(t *testing.T) {
	tok, ok := ByID(MOB)
	require.True(t, ok)
	require.Equal(t, Mob{}, tok)

	_, ok = ByID(2)
	require.False(t, ok)

	tok, ok = FromString("MOB")
	require.True(t, ok)
	require.Equal(t, MOB, tok.ID())

	for _, s := range []string{"", "mob", "eUSD"} {
		_, ok = FromString(s)
		require.False(t, ok)
	}

	require.Equal(t, "MOB", Name(MOB))
	require.Equal(t, "2", Name(2))
}

func TestKnown(t *testing.T) {
	k := Known()
	require.Equal(t, []Token{Mob{}}, k)
	k[0] = nil
	require.Equal(t, []Token{Mob{}}, Known())
}
