package domain

import (
	"encoding/base64"
	"strings"
)

// ImageReference は生成リクエストに添付するインライン参照画像です。
// リモートURLは添付できないため、常に base64 の生データで持ちます。
type ImageReference struct {
	DataBase64 string
	MimeType   string
}

// ImageRequest は1枚ぶんの画像生成要求です。
type ImageRequest struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	References     []ImageReference
}

// ImageResult は生成された画像データとそのメタデータです。
type ImageResult struct {
	Data     []byte
	MimeType string
}

// ReferenceFromDataURI は data URI を ImageReference に変換します。
// data URI でない（= リモートURLなどの）場合は ok=false を返します。
func ReferenceFromDataURI(uri string) (ImageReference, bool) {
	m := dataURIRegex.FindStringSubmatch(uri)
	if m == nil {
		return ImageReference{}, false
	}
	payload := uri[strings.IndexByte(uri, ',')+1:]
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return ImageReference{}, false
	}
	return ImageReference{DataBase64: payload, MimeType: m[1]}, true
}
