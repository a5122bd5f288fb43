package xkafkasink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEncodeCommittable_Layout(t *testing.T) {
	data, err := EncodeCommittable(mustCommittable(t, "t1", 5, 2))
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 1, // version
		0, 0, 0, 0, 0, 0, 0, 5, // producerId
		0, 2, // epoch
		0, 2, // id length
		't', '1',
	}, data)
}

func TestEncodeCommittable_DropsHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newLive(t, ctrl, "t1", 5, 2)

	data, err := EncodeCommittable(f.committable)
	require.NoError(t, err)

	decoded, err := DecodeCommittable(data)
	require.NoError(t, err)
	assert.True(t, decoded.SameTransaction(f.committable))
	_, ok := decoded.Producer()
	assert.False(t, ok)
}

func TestEncodeCommittable_Errors(t *testing.T) {
	_, err := EncodeCommittable(nil)
	assert.ErrorIs(t, err, ErrCorruptCommittable)

	long := &Committable{transactionalID: string(make([]byte, maxIDLen+1))}
	_, err = EncodeCommittable(long)
	assert.ErrorIs(t, err, ErrCorruptCommittable)
}

func TestDecodeCommittable_Errors(t *testing.T) {
	valid, err := EncodeCommittable(mustCommittable(t, "t1", 5, 2))
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "empty", data: nil, wantErr: ErrCorruptCommittable},
		{name: "short version", data: []byte{0, 0}, wantErr: ErrCorruptCommittable},
		{name: "unknown version", data: append([]byte{0, 0, 0, 2}, valid[4:]...), wantErr: ErrUnsupportedVersion},
		{name: "truncated header", data: valid[:10], wantErr: ErrCorruptCommittable},
		{name: "truncated id", data: valid[:len(valid)-1], wantErr: ErrCorruptCommittable},
		{name: "trailing bytes", data: append(append([]byte{}, valid...), 'x'), wantErr: ErrCorruptCommittable},
		{name: "invalid utf8", data: []byte{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 5, 0, 2, 0, 1, 0xff}, wantErr: ErrCorruptCommittable},
		{name: "empty id", data: []byte{0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 5, 0, 2, 0, 0}, wantErr: ErrEmptyTransactionalID},
		{
			name:    "negative producer id",
			data:    []byte{0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 2, 0, 1, 'a'},
			wantErr: ErrInvalidProducerID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCommittable(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, c)
		})
	}
}

func TestCommittablesJSON(t *testing.T) {
	data, err := EncodeCommittablesJSON([]*Committable{
		mustCommittable(t, "t1", 5, 2),
		mustCommittable(t, "t2", 7, 0),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"transactionalId":"t1","producerId":5,"epoch":2},
		{"transactionalId":"t2","producerId":7,"epoch":0}
	]`, string(data))

	decoded, err := DecodeCommittablesJSON(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.True(t, decoded[0].SameTransaction(mustCommittable(t, "t1", 5, 2)))
	assert.True(t, decoded[1].SameTransaction(mustCommittable(t, "t2", 7, 0)))
}

func TestEncodeCommittablesJSON_Nil(t *testing.T) {
	data, err := EncodeCommittablesJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecodeCommittablesJSON_Errors(t *testing.T) {
	_, err := DecodeCommittablesJSON([]byte(`{"transactionalId":"t1"}`))
	assert.Error(t, err)

	_, err = DecodeCommittablesJSON([]byte(`[{"transactionalId":"t1","producerId":1},{"producerId":2}]`))
	assert.ErrorIs(t, err, ErrEmptyTransactionalID)
	assert.Contains(t, err.Error(), "#1")
}

func FuzzDecodeCommittable(f *testing.F) {
	seed, err := EncodeCommittable(&Committable{transactionalID: "t1", producerID: 5, epoch: 2})
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 1})

	f.Fuzz(func(t *testing.T, data []byte) {
		c, err := DecodeCommittable(data)
		if err != nil {
			return
		}
		encoded, err := EncodeCommittable(c)
		if err != nil {
			t.Fatalf("re-encode %s: %v", c, err)
		}
		if string(encoded) != string(data) {
			t.Fatalf("round trip mismatch: %x != %x", encoded, data)
		}
	})
}
