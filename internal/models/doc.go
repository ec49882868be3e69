// Package models defines the core domain models for SplitPay.
//
// # Models
//
//   - Bill: a split-expense record with a fixed total, currency, organizer,
//     and participant set
//   - Participant: one party owing a fixed share of a bill
//   - User: a registered account in the dev identity provider
//
// All monetary fields use money.Money (integer minor units); statuses are
// derived from owed/paid amounts on read, never stored.
//
// # Design Principles
//
//  1. **Derived status**: participant and bill status are pure functions of
//     the amounts, so cached state can never diverge from them
//  2. **Monotonic amounts**: Paid only increases; Owed and Total never
//     change after creation
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers
package models
