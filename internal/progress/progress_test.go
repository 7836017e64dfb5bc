package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchProgress_Disabled(t *testing.T) {
	buf := new(bytes.Buffer)
	p := NewSearchProgress(false, buf)

	p.Start(8)
	p.Update(3)
	p.Finish()

	assert.Nil(t, p.bar)
	assert.Empty(t, buf.String())
}

func TestSearchProgress_Enabled(t *testing.T) {
	buf := new(bytes.Buffer)
	p := NewSearchProgress(true, buf)

	p.Start(64)
	assert.NotNil(t, p.bar)
	assert.Equal(t, uint32(64), p.dim)

	p.Update(12)
	p.Finish()

	assert.Nil(t, p.bar)
	assert.Nil(t, p.done)

	// finishing twice is harmless
	p.Finish()
}

func TestSearchProgress_ZeroValue(t *testing.T) {
	var p SearchProgress

	p.Start(2)
	p.Update(1)
	p.Finish()

	assert.Nil(t, p.bar)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "searching dim=128 size=7", describe(128, 7))
}
