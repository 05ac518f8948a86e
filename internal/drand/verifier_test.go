package drand

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// validBeacon builds a triple that passes the binding check: the signature
// is a real G2 point and the randomness is sha256 of its bytes.
func validBeacon(t *testing.T, round uint64) Beacon {
	t.Helper()

	signature, err := suite.G2().Point().Base().MarshalBinary()
	require.NoError(t, err)
	require.Len(t, signature, signatureBytes)

	randomness := sha256.Sum256(signature)

	return Beacon{
		Round:      round,
		Randomness: hex.EncodeToString(randomness[:]),
		Signature:  hex.EncodeToString(signature),
	}
}

// testNow is a time whose expected round is exactly 1001.
var testNow = time.Unix(GenesisTime+1000*Period, 0)

func TestVerifyAcceptsValidBeacon(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	seed, err := Verify(MainnetPubkey, beacon, testNow, 0)
	require.NoError(t, err)

	randomness, err := hex.DecodeString(beacon.Randomness)
	require.NoError(t, err)
	require.Equal(t, binary.BigEndian.Uint64(randomness[:8]), seed)
}

func TestVerifyRejectsForeignPubkey(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	foreign := "a" + MainnetPubkey[1:]
	_, err := Verify(foreign, beacon, testNow, 0)
	require.ErrorIs(t, err, ErrUnknownPubkey)
}

func TestVerifyRejectsMalformedRandomness(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	short := beacon
	short.Randomness = beacon.Randomness[:62]
	_, err := Verify(MainnetPubkey, short, testNow, 0)
	require.ErrorIs(t, err, ErrBadRandomness)

	notHex := beacon
	notHex.Randomness = strings.Repeat("zz", 32)
	_, err = Verify(MainnetPubkey, notHex, testNow, 0)
	require.ErrorIs(t, err, ErrBadRandomness)
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	short := beacon
	short.Signature = beacon.Signature[:190]
	_, err := Verify(MainnetPubkey, short, testNow, 0)
	require.ErrorIs(t, err, ErrBadSignature)

	// right length, not a point on the curve
	offCurve := beacon
	offCurve.Signature = strings.Repeat("ff", signatureBytes)
	_, err = Verify(MainnetPubkey, offCurve, testNow, 0)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyFreshnessWindow(t *testing.T) {
	expected := CurrentRound(testNow) // 1001

	cases := []struct {
		name  string
		round uint64
		want  error
	}{
		{"oldest accepted", expected - 20, nil},
		{"one past oldest", expected - 21, ErrRoundTooOld},
		{"newest accepted", expected + 10, nil},
		{"one past newest", expected + 11, ErrRoundTooNew},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			beacon := validBeacon(t, tc.round)
			_, err := Verify(MainnetPubkey, beacon, testNow, 0)
			if tc.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestVerifyMinRound(t *testing.T) {
	round := CurrentRound(testNow)
	beacon := validBeacon(t, round)

	_, err := Verify(MainnetPubkey, beacon, testNow, round)
	require.ErrorIs(t, err, ErrRoundBeforeClose)

	_, err = Verify(MainnetPubkey, beacon, testNow, round-1)
	require.NoError(t, err)
}

func TestVerifyBindingMismatch(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	// flip one randomness byte; the signature no longer hashes to it
	tampered := []byte(beacon.Randomness)
	if tampered[0] == '0' {
		tampered[0] = '1'
	} else {
		tampered[0] = '0'
	}
	beacon.Randomness = string(tampered)

	_, err := Verify(MainnetPubkey, beacon, testNow, 0)
	require.ErrorIs(t, err, ErrBindingMismatch)
}

func TestVerifyDeterministicSeed(t *testing.T) {
	beacon := validBeacon(t, CurrentRound(testNow))

	first, err := Verify(MainnetPubkey, beacon, testNow, 0)
	require.NoError(t, err)
	second, err := Verify(MainnetPubkey, beacon, testNow, 0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCurrentRound(t *testing.T) {
	require.Zero(t, CurrentRound(time.Unix(GenesisTime-1, 0)))
	require.Equal(t, uint64(1), CurrentRound(time.Unix(GenesisTime, 0)))
	require.Equal(t, uint64(1), CurrentRound(time.Unix(GenesisTime+Period-1, 0)))
	require.Equal(t, uint64(2), CurrentRound(time.Unix(GenesisTime+Period, 0)))
}

func TestSeedPadding(t *testing.T) {
	require.Equal(t, uint64(0x0102030405060708), Seed([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	// shorter input is zero-padded on the right
	require.Equal(t, uint64(0x0100000000000000), Seed([]byte{1}))
}
