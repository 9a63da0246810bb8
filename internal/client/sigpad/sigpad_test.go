package sigpad

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad_EmptyUntilFirstStroke(t *testing.T) {
	p := New(100, 40)
	assert.True(t, p.IsEmpty())

	data, err := p.Commit()
	require.NoError(t, err)
	assert.Nil(t, data, "empty pad commits to nil")

	p.Stroke([]Point{{X: 10, Y: 10}, {X: 30, Y: 20}})
	assert.False(t, p.IsEmpty())
}

func TestPad_CommitProducesPNG(t *testing.T) {
	p := New(100, 40)
	p.Stroke([]Point{{X: 5, Y: 5}, {X: 50, Y: 30}, {X: 90, Y: 10}})

	data, err := p.Commit()
	require.NoError(t, err)
	require.NotNil(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0), r+g+b, "stroke pixels are black")
}

func TestPad_ClearResets(t *testing.T) {
	p := New(50, 20)
	p.Stroke([]Point{{X: 1, Y: 1}, {X: 10, Y: 10}})
	require.False(t, p.IsEmpty())

	p.Clear()
	assert.True(t, p.IsEmpty())

	data, err := p.Commit()
	require.NoError(t, err)
	assert.Nil(t, data)

	r, g, b, _ := p.img.At(1, 1).RGBA()
	assert.Equal(t, uint32(3*0xffff), r+g+b, "surface is back to white")
}

func TestPad_StrokeOutsideBoundsStaysEmpty(t *testing.T) {
	p := New(20, 20)
	p.Stroke([]Point{{X: 100, Y: 100}})
	assert.True(t, p.IsEmpty())
}
