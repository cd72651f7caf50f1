// Package models defines the core domain models for divvy.
//
// # Models
//
//   - Project: an isolated ledger identified by a URL-safe slug; holds
//     members and bills and carries the shared private code
//   - Member: a participant in a project with a consumption weight
//   - Bill: an expense paid by one member on behalf of one or more owers
//
// # Design Principles
//
// 1. **Validation at construction**: the New* constructors enforce every
// field rule and return wrapped sentinel errors, so a model that exists
// is a model that is valid.
// 2. **Exact money**: amounts and weights are decimal.Decimal end to end;
// float64 appears only in API response serialization.
// 3. **Derived state is not a model**: balances, statistics, and the
// settlement plan are computed from bills on demand and never stored.
// 4. **Members are never silently destroyed**: a member referenced by
// bills is deactivated instead of deleted so history stays consistent.
package models
