/*
Package magicbeans implements a deposit based value growing game.

A participant plants native currency and receives beans for it. A fee is taken
from every deposit and attributed to the owner configured at genesis, while the
full deposit becomes pool liquidity. Planted beans grow linearly with the block
time until the configured maturity period passes. At that point the grown
amount equals the planted amount and does not grow any further.

Grown beans can be either replanted, which adds them to the planted balance and
restarts the growth, or sold for the native currency. A sale removes the sold
beans from the planted balance and is possible only if the pool holds enough
liquidity to pay the whole grown amount.

Funds sent to the pool address with a regular cash transfer are planted on
behalf of the sender, see DepositDecorator.
*/
package magicbeans
