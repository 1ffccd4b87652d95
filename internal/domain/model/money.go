package model

import "github.com/shopspring/decimal"

// 金額カラム numeric(10,2) に入る上限（これ未満）
var MaxAmount = decimal.New(1, 8)

// 金額カラムに収まるか
func AmountFits(d decimal.Decimal) bool {
	return d.LessThan(MaxAmount)
}

// 数量 × 単価
func LinePrice(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// 明細金額の合計
func SumLinePrices(prices ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total
}
