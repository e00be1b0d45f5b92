package domain

import "errors"

// 系統的な失敗を区別するための番兵エラーです。errors.Is で判定します。
var (
	// ErrQuotaExhausted は生成アカウントのクレジット/クォータ切れを表します。
	// 個別セクションの失敗とは違い、この1件だけはバッチ全体を中断させます。
	ErrQuotaExhausted = errors.New("生成クレジットが不足しています")

	// ErrMissingAPIKey は APIキー未設定を表します。ネットワーク呼び出しの前に検出します。
	ErrMissingAPIKey = errors.New("APIキーが設定されていません")

	// ErrInvalidPlan はテキスト生成の応答が構造的に不正でプランを組めないことを表します。
	ErrInvalidPlan = errors.New("プラン応答の構造が不正です")
)
