// Package rules implements the pipeline automation engine.
//
// A deal-lifecycle event (won, lost, inactive) enters via Engine.Dispatch.
// The engine selects the active rules registered for that trigger in the
// deal's pipeline plus the global ones, in ascending priority order,
// evaluates each rule's condition chain against the deal snapshot, gates
// matching rules on cooldown and execute-once state, runs their actions in
// order, and appends an execution record per attempt.
//
// Action kinds are dispatched through an extensible registry; a new kind
// only needs a registered executor, the dispatcher stays untouched. A rule
// failing never aborts the evaluation of the remaining rules.
package rules
