package utils

import "crypto/rand"

// 去掉易混淆字符（0/O、1/I/L），引用号要报给真人核对
const refAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const ReferenceLen = 10

// NewReference 订单引用号：10 位大写字母数字，约 31^10 ≈ 8e14 空间，
// 碰撞仍由 orders.reference 唯一索引兜底（调用方撞了就重试）。
func NewReference() string {
	b := make([]byte, ReferenceLen)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = refAlphabet[int(b[i])%len(refAlphabet)]
	}
	return string(b)
}
