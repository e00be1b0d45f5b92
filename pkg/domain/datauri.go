package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

var dataURIRegex = regexp.MustCompile(`^data:([^;]+);base64,`)

// IsDataURI は base64 の data URI かどうかを返します。
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// IsRemoteURL はリモート参照可能な http(s) URL かどうかを返します。
func IsRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// DecodeDataURI は data URI から MIME タイプとバイナリを取り出します。
func DecodeDataURI(uri string) (mimeType string, data []byte, err error) {
	m := dataURIRegex.FindStringSubmatch(uri)
	if m == nil {
		return "", nil, fmt.Errorf("data URI 形式ではありません")
	}
	idx := strings.IndexByte(uri, ',')
	raw, err := base64.StdEncoding.DecodeString(uri[idx+1:])
	if err != nil {
		return "", nil, fmt.Errorf("base64のデコードに失敗しました: %w", err)
	}
	return m[1], raw, nil
}

// EncodeDataURI はバイナリを data URI 文字列に変換します。
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
