// Package capitol reconciles politician stock-trade disclosures with
// historical stock prices.
//
// The core functionalities include:
//   - Record Normalization: turning heterogeneous disclosure records, whatever
//     the source spelled its fields, into canonical Trade values, silently
//     discarding malformed ones.
//   - Price Series: a per-ticker, read-only, chronological series of daily
//     closes answering "nearest trading day" and "first trading day on or
//     after" queries.
//   - Return Calculation: the purchase price in effect on the transaction date,
//     reference prices at several horizons (today, a week later, a month
//     later...) and the percentage returns between them.
//   - Reconciliation Pipeline: the batch orchestration fetching each ticker's
//     prices once, enriching every trade, and sorting the result into a
//     deterministic table with a provenance note.
//
// Values that cannot be computed (no price, no reference, zero purchase price)
// are represented as invalid decimal.NullDecimal, never as zero.
package capitol
