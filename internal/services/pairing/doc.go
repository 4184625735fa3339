// Package pairing selects market-diverse alternate pickup and delivery
// cities for a lane.
//
// Selection runs in three stages:
//   - Candidates around each base city are scored (Score) on rate
//     favorability, population, hot flag, proximity and equipment bias.
//   - A progressive radius search (75, 100, 125 miles) with a strict
//     one-per-market-area cap gathers enough candidates per side; the widest
//     ring only admits "no-brainer" candidates.
//   - A k-cardinality assignment (Hungarian algorithm) matches pickups to
//     deliveries maximizing the combined score, optionally retrying with a
//     relaxed two-per-market-area cap.
//
// All stages are deterministic for a given input order.
package pairing
