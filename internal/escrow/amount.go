package escrow

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// USDCDecimals USDC 固定 6 位小数
const USDCDecimals = 6

// FromBaseUnits 链上基本单位整数转十进制金额，整数移位，无浮点参与
func FromBaseUnits(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -USDCDecimals)
}

// ToBaseUnits 十进制金额转链上基本单位整数
func ToBaseUnits(d decimal.Decimal) *big.Int {
	return d.Shift(USDCDecimals).BigInt()
}
