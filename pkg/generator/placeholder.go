package generator

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

const (
	placeholderWidth  = 600
	placeholderHeight = 1067
)

var (
	placeholderOnce sync.Once
	placeholderURI  string
)

// PlaceholderDataURI は生成失敗セクション用の代替画像を data URI で返します。
// 一度だけエンコードして使い回すのだ。
func PlaceholderDataURI() string {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
		bg := color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
		line := color.RGBA{R: 0xBB, G: 0xBB, B: 0xBB, A: 0xFF}
		for y := 0; y < placeholderHeight; y++ {
			for x := 0; x < placeholderWidth; x++ {
				img.Set(x, y, bg)
			}
		}
		// 中央に細い横線を1本入れて「空枠」だと分かるようにしておく
		for x := placeholderWidth / 4; x < placeholderWidth*3/4; x++ {
			img.Set(x, placeholderHeight/2, line)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			// 固定サイズのメモリ内エンコードで失敗することはまずない
			placeholderURI = "data:image/png;base64,"
			return
		}
		placeholderURI = domain.EncodeDataURI("image/png", buf.Bytes())
	})
	return placeholderURI
}
