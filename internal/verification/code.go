// Package verification はメール認証コードの生成と保管を提供する。
package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeDigits は認証コードの桁数。10^6通りの空間があれば
// TTLの範囲内での総当たりは現実的でない。
const codeDigits = 6

// GenerateCode は6桁のゼロ埋め10進数の認証コードを生成する。
// crypto/randを使用し、過去のコードから次のコードを予測できない。
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
