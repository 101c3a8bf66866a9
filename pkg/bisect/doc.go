/*
Package bisect implements the job pipeline for bisecting rustc regressions with cargo-bisect-rustc.

A [Submitter] accepts code snippets together with [Options] describing the nightly range to search
and puts them onto a bounded queue, rejecting submissions with [ErrQueueFull] once the queue is at
capacity. A single [Worker] consumes the queue, records every dequeued job as in progress, invokes
a [Runner] and persists the classified result.

The production runner is [CargoRunner], which scaffolds a throwaway cargo project for the submitted
code and shells out to cargo-bisect-rustc. Its output classification is independent of the actual
subprocess call, so it can be exercised with captured tool output. Any other [Runner] implementation
can be plugged into the worker, for example a deterministic fake in tests.
*/
package bisect
