package feemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenfee/feemap/internal/testserdes"
	"github.com/tokenfee/feemap/pkg/io"
	"github.com/tokenfee/feemap/pkg/token"
	"gopkg.in/yaml.v3"
)

func testFeeMap(t *testing.T) *FeeMap {
	m, err := NewFromEntries(Entry{30, 300}, Entry{token.MOB, 100}, Entry{2, 2000})
	require.NoError(t, err)
	return m
}

func TestEncodeDecodeBinary(t *testing.T) {
	testserdes.EncodeDecodeBinary(t, testFeeMap(t), new(FeeMap))
	testserdes.EncodeDecodeBinary(t, Default(), new(FeeMap))
}

func TestBinaryLayout(t *testing.T) {
	m, err := NewFromEntries(Entry{2, 5}, Entry{token.MOB, 1})
	require.NoError(t, err)
	data, err := testserdes.EncodeBinary(m)
	require.NoError(t, err)
	require.Equal(t, []byte{
		2,
		0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0, 5, 0, 0, 0, 0, 0, 0, 0,
	}, data)

	// Zero value is encoded as the default map.
	zero, err := testserdes.EncodeBinary(new(FeeMap))
	require.NoError(t, err)
	def, err := testserdes.EncodeBinary(Default())
	require.NoError(t, err)
	require.Equal(t, def, zero)
}

func TestDecodeBinaryErrors(t *testing.T) {
	encode := func(entries ...Entry) []byte {
		w := io.NewBufBinWriter()
		io.WriteArray(w.BinWriter, entries)
		require.NoError(t, w.Err)
		return w.Bytes()
	}
	orig := testFeeMap(t)

	testCases := map[string]struct {
		data []byte
		err  error
	}{
		"unsorted":  {encode(Entry{2, 1}, Entry{token.MOB, 1}), ErrUnsortedEntries},
		"duplicate": {encode(Entry{token.MOB, 1}, Entry{token.MOB, 2}), ErrUnsortedEntries},
		"empty":     {encode(), ErrMissingFee},
		"no MOB":    {encode(Entry{1, 1}), ErrMissingFee},
		"zero fee":  {encode(Entry{token.MOB, 0}), ErrInvalidFee},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			m := orig.Copy()
			err := testserdes.DecodeBinary(tc.data, m)
			require.ErrorIs(t, err, tc.err)
			require.True(t, m.Equals(orig))
		})
	}

	t.Run("too many entries", func(t *testing.T) {
		for _, data := range [][]byte{
			{0xfe, 0, 0, 0, 1},
			{0xfd, 0x01, 0x10}, // MaxEntries + 1
		} {
			m := orig.Copy()
			require.ErrorIs(t, testserdes.DecodeBinary(data, m), io.ErrTooBig)
			require.True(t, m.Equals(orig))
		}
	})

	t.Run("truncated", func(t *testing.T) {
		data := encode(Entry{token.MOB, 1})
		m := orig.Copy()
		require.Error(t, testserdes.DecodeBinary(data[:len(data)-1], m))
		require.True(t, m.Equals(orig))
	})
}

func TestMarshalUnmarshalJSON(t *testing.T) {
	testserdes.MarshalUnmarshalJSON(t, testFeeMap(t), new(FeeMap))

	data, err := json.Marshal(testFeeMap(t))
	require.NoError(t, err)
	require.JSONEq(t, `[{"token_id":0,"fee":100},{"token_id":2,"fee":2000},{"token_id":30,"fee":300}]`, string(data))
}

func TestUnmarshalJSON(t *testing.T) {
	var m FeeMap
	require.NoError(t, json.Unmarshal([]byte(`[{"token_id":30,"fee":300},{"token_id":0,"fee":100},{"token_id":2,"fee":2000}]`), &m))
	require.True(t, m.Equals(testFeeMap(t)))
	require.Equal(t, testFeeMap(t).Digest(), m.Digest())

	for name, tc := range map[string]struct {
		data string
		err  error
	}{
		"duplicate": {`[{"token_id":0,"fee":1},{"token_id":0,"fee":2}]`, ErrDuplicateToken},
		"empty":     {`[]`, ErrMissingFee},
		"null":      {`null`, ErrMissingFee},
		"zero fee":  {`[{"token_id":0,"fee":0}]`, ErrInvalidFee},
	} {
		t.Run(name, func(t *testing.T) {
			m := testFeeMap(t)
			require.ErrorIs(t, json.Unmarshal([]byte(tc.data), m), tc.err)
			require.True(t, m.Equals(testFeeMap(t)))
		})
	}

	m = *testFeeMap(t)
	require.Error(t, json.Unmarshal([]byte(`{"token_id":0}`), &m))
	require.Error(t, json.Unmarshal([]byte(`[{"token_id":-1,"fee":1}]`), &m))
}

func TestMarshalUnmarshalYAML(t *testing.T) {
	testserdes.MarshalUnmarshalYAML(t, testFeeMap(t), new(FeeMap))

	data, err := yaml.Marshal(testFeeMap(t))
	require.NoError(t, err)
	require.Equal(t, "0: 100\n2: 2000\n30: 300\n", string(data))
}

func TestUnmarshalYAML(t *testing.T) {
	type cfg struct {
		Fees FeeMap `yaml:"Fees"`
	}
	var c cfg
	require.NoError(t, yaml.Unmarshal([]byte("Fees:\n  30: 300\n  2: 2000\n  0: 100\n"), &c))
	require.True(t, c.Fees.Equals(testFeeMap(t)))

	// Absent section leaves the zero (default) value.
	c = cfg{}
	require.NoError(t, yaml.Unmarshal([]byte("Other: 1\n"), &c))
	require.True(t, c.Fees.Equals(Default()))

	for name, tc := range map[string]struct {
		data string
		err  error
	}{
		"no MOB":   {"Fees:\n  2: 2000\n", ErrMissingFee},
		"zero fee": {"Fees:\n  0: 100\n  2: 0\n", ErrInvalidFee},
	} {
		t.Run(name, func(t *testing.T) {
			var c cfg
			require.ErrorIs(t, yaml.Unmarshal([]byte(tc.data), &c), tc.err)
		})
	}

	require.Error(t, yaml.Unmarshal([]byte("Fees:\n  0: -1\n"), &c))
	require.Error(t, yaml.Unmarshal([]byte("Fees:\n  0: 1\n  0: 2\n"), &c))
}
