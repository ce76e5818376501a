// Package refactor holds the state of one interactive refactoring session and
// the pure function that advances it. Reduce performs no I/O and never blocks;
// the work each phase waits for is done by the caller, which reports results
// back as further actions.
package refactor
