package transport

import (
	"testing"

	"github.com/relset/elector"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/encoding"
)

func TestGobCodecRoundTrip(t *testing.T) {
	assert := assert.New(t)

	codec := encoding.GetCodec("gob")
	assert.NotNil(codec)

	in := &elector.FreshQuery{
		Set:           "rs0",
		Who:           "node-1:27017",
		CandidateID:   1,
		ConfigVersion: 4,
		LivePosition:  elector.LogPosition{Term: 2, Index: 9},
	}

	data, err := codec.Marshal(in)
	assert.Nil(err)
	assert.NotEmpty(data)

	out := new(elector.FreshQuery)
	assert.Nil(codec.Unmarshal(data, out))
	assert.Equal(*in, *out)
}

func TestGobCodecName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("gob", encoding.GetCodec("gob").Name())
}
