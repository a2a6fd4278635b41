package media

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func box(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	out := make([]byte, 8, 8+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(8+len(body)))
	copy(out[4:8], typ)
	return append(out, body...)
}

func mvhdV0(timescale, duration uint32) []byte {
	p := make([]byte, 100)
	binary.BigEndian.PutUint32(p[12:16], timescale)
	binary.BigEndian.PutUint32(p[16:20], duration)
	return box("mvhd", p)
}

func mvhdV1(timescale uint32, duration uint64) []byte {
	p := make([]byte, 112)
	p[0] = 1
	binary.BigEndian.PutUint32(p[20:24], timescale)
	binary.BigEndian.PutUint64(p[24:32], duration)
	return box("mvhd", p)
}

func ftyp() []byte {
	return box("ftyp", []byte("isom"), []byte{0, 0, 2, 0}, []byte("isomiso2avc1mp41"))
}

// syntheticMP4 builds a minimal mp4 whose movie header reports secs seconds.
func syntheticMP4(secs uint32) []byte {
	return bytes.Join([][]byte{ftyp(), box("free", make([]byte, 16)), box("moov", mvhdV0(1000, secs*1000))}, nil)
}

func TestProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    float64
		wantErr bool
	}{
		{name: "v0 header", data: syntheticMP4(75), want: 75},
		{name: "v1 header", data: bytes.Join([][]byte{ftyp(), box("moov", mvhdV1(600, 600*42))}, nil), want: 42},
		{name: "fractional", data: bytes.Join([][]byte{ftyp(), box("moov", mvhdV0(90000, 90000*30+45000))}, nil), want: 30.5},
		{name: "no moov", data: bytes.Join([][]byte{ftyp(), box("mdat", make([]byte, 32))}, nil), wantErr: true},
		{name: "truncated box", data: append(ftyp(), 0, 0, 0, 200, 'm', 'o', 'o', 'v'), wantErr: true},
		{name: "zero timescale", data: bytes.Join([][]byte{ftyp(), box("moov", mvhdV0(0, 10))}, nil), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProbeDuration(bytes.NewReader(tt.data), int64(len(tt.data)))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestSniffAndAllowed(t *testing.T) {
	f := bytes.NewReader(syntheticMP4(20))
	ct, err := Sniff(f)
	require.NoError(t, err)
	require.True(t, Allowed(ct, VideoTypes), ct)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	ct, err = Sniff(bytes.NewReader(png))
	require.NoError(t, err)
	require.False(t, Allowed(ct, VideoTypes))
	require.True(t, Allowed(ct, ImageTypes))

	require.True(t, Allowed("video/mp4; codecs=avc1", VideoTypes))
}
