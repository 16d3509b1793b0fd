package feemap

import (
	"github.com/tokenfee/feemap/pkg/crypto/transcript"
	"github.com/tokenfee/feemap/pkg/token"
)

// digestDomain is used both as the transcript domain and as the sequence label.
const digestDomain = "fee_map"

// DigestOf returns the digest a FeeMap with the given fees would have. The
// fees are not validated.
func DigestOf(fees map[token.ID]uint64) string {
	return calcDigest(toEntries(fees))
}

// calcDigest expects entries sorted by token.
func calcDigest(entries []Entry) string {
	t := transcript.New(digestDomain)
	t.AppendSeqHeader(digestDomain, uint64(len(entries))*2)
	for _, e := range entries {
		t.Append("token_id", e.Token)
		t.AppendUint64("fee", e.Fee)
	}
	return t.Digest().String()
}
