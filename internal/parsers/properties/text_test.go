package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeUTF16LERoundTrip(t *testing.T) {
	s := "My BitLocker Volume"
	assert.Equal(t, s, DecodeUTF16LE(EncodeUTF16LE(s)))
}

func TestDecodeUTF16LEStopsAtNUL(t *testing.T) {
	data := EncodeUTF16LE("abc")
	data = append(data, 0, 0, 'x', 0)
	assert.Equal(t, "abc", DecodeUTF16LE(data))
}

func TestDecodeUTF16LEEmpty(t *testing.T) {
	assert.Equal(t, "", DecodeUTF16LE(nil))
}
