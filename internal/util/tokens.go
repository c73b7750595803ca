// Package util provides small helpers shared across packages.
package util

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"

	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// EstimateTokens approximates the token count of text with the cl100k_base
// encoding. It falls back to four characters per token when the encoder is
// unavailable.
func EstimateTokens(text string) int64 {
	if text == "" {
		return 0
	}
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			log.Warnf("token estimator unavailable: %v", err)
			return
		}
		codec = c
	})
	if codec != nil {
		if ids, _, err := codec.Encode(text); err == nil {
			return int64(len(ids))
		}
	}
	return int64((len(text) + 3) / 4)
}
