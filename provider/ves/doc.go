// Package ves provides the upstream source adapters for Venezuelan
// Bolivar (VES) rate data.
//
// # BCV (Official Central Bank)
//
// Scrapes official exchange rates from the Banco Central de Venezuela
// website, returning per-currency values (USD, EUR, CNY, TRY, RUB
// against VES) plus the effective "Fecha Valor" date, which keys the
// daily history record.
//
// # Binance P2P / Bybit P2P (USDT)
//
// Fetch peer-to-peer USDT/VES order books. Both adapters normalize to
// the shared OrderBookEntry shape and to one canonical orientation:
// BUY means the taker acquires USDT with VES. The marketplaces return
// offers pre-sorted best price first; that ordering is preserved.
//
// All adapters distinguish "zero offers" (a valid empty answer) from an
// unreachable or malformed upstream (an error, which triggers fallback
// handling in the callers).
package ves
