package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/feecycle/common"
)

func validParams() *Params {
	return &Params{
		ProgramID: common.Address{0x01},
		MaxValue:  254,
		Global:    common.Address{0x02},
		Mint:      common.Address{0x03},
	}
}

func TestEncodeFormat(t *testing.T) {
	enc := string(validParams().Encode())
	require.True(t, strings.HasPrefix(enc, "PID=0x01"))
	require.Contains(t, enc, ",MAX_VALUE=254,")
	require.True(t, strings.HasSuffix(enc, ","))
	require.Equal(t, 4, strings.Count(enc, "="))
}

func TestDecodeIgnoresUnknownAndEmpty(t *testing.T) {
	p := validParams()
	data := append([]byte("EXTRA=1,,garbage,"), p.Encode()...)
	data = append(data, ",,"...)
	got, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestDecodeRejects(t *testing.T) {
	good := validParams()
	cases := map[string][]byte{
		"zero max":      (&Params{ProgramID: good.ProgramID, Global: good.Global, Mint: good.Mint}).Encode(),
		"zero program":  (&Params{MaxValue: 1, Global: good.Global, Mint: good.Mint}).Encode(),
		"zero global":   (&Params{ProgramID: good.ProgramID, MaxValue: 1, Mint: good.Mint}).Encode(),
		"zero mint":     (&Params{ProgramID: good.ProgramID, MaxValue: 1, Global: good.Global}).Encode(),
		"invalid utf8":  {0xff, 0xfe, 'P', 'I', 'D'},
		"bad max":       []byte(strings.Replace(string(good.Encode()), "MAX_VALUE=254", "MAX_VALUE=256", 1)),
		"negative max":  []byte(strings.Replace(string(good.Encode()), "MAX_VALUE=254", "MAX_VALUE=-1", 1)),
		"bad identity":  []byte(strings.Replace(string(good.Encode()), "PID=0x01", "PID=0xzz", 1)),
		"short mint id": []byte("PID=0x01,MAX_VALUE=1,GLOBAL=0x02,MINT=0x03"),
		"empty":         {},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(data)
			require.True(t, errors.Is(err, ErrArgParseFail), "got %v", err)
		})
	}
}

func genAddress() gopter.Gen {
	return gen.SliceOfN(common.AddressLength, gen.UInt8()).
		SuchThat(func(b []uint8) bool {
			for _, x := range b {
				if x != 0 {
					return true
				}
			}
			return false
		}).
		Map(func(b []uint8) common.Address { return common.BytesToAddress(b) })
}

func TestCodecRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("decode(encode(p)) == p", prop.ForAll(
		func(pid, global, mint common.Address, max uint8) bool {
			p := &Params{ProgramID: pid, MaxValue: max, Global: global, Mint: mint}
			got, err := Decode(p.Encode())
			return err == nil && *got == *p
		},
		genAddress(), genAddress(), genAddress(), gen.UInt8Range(1, 255),
	))
	properties.TestingRun(t)
}
