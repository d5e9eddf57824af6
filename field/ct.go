package field

import "github.com/quiknode-labs/arcium-election/utils"

// orderCt is Order as a constant-time integer, set in init.
var orderCt utils.CtInt

// AddCt returns a + b, computed on fixed-width integers with a branchless conditional
// subtraction of the order. No branch or memory access depends on the operands.
func AddCt(a, b Element) Element {
	sum := utils.CtAdd(a.Ct(), b.Ct(), BinSize)
	lt := utils.CtLt(sum, orderCt, BinSize)
	return FromCt(utils.CtSelect(lt, sum, utils.CtSub(sum, orderCt, BinSize), BinSize))
}

// SubCt returns a - b, adding the order back when the difference is negative.
func SubCt(a, b Element) Element {
	diff := utils.CtSub(a.Ct(), b.Ct(), BinSize)
	neg := utils.CtSignBit(diff, BinSize)
	return FromCt(utils.CtSelect(neg, utils.CtAdd(diff, orderCt, BinSize), diff, BinSize))
}
