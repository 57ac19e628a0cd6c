/*
Package pipeline sequences the handoff of asset files from the inbox into the
version-controlled working copy.

	 inbox/file ──> Pending ──> Parsed ──> Relocated ──> Committed ──> Pushed
	                  │            │           │             │
	                  │            │           │             │ (git failure)
	                  ▼            ▼           ▼             ▼
	            ReturnedToInbox  ReturnedToInbox   compensating move back
	                                                 │
	                                                 │ (inbox gone)
	                                                 ▼
	                                            MovedToFailed

🎯 Purpose:
- Drive parse → path derivation → move → pull/add/commit/push per file
- Recover from partial failure without losing files
- Aggregate per-file outcomes into a batch result

🔄 Flow:
1. Precondition: the working copy must exist (side-effect-free failure)
2. Parse the filename; failures never move the file out of the inbox
3. Derive the canonical target path and create its parents
4. Move the file into the working copy (first irreversible step)
5. Pull, add, commit, push; a rejected push gets one pull+retry
6. On a git failure after the move, move the file back to the inbox; when
   the inbox directory is gone, route it to the failed directory instead

📝 Design Philosophy:
The move-then-publish sequence is a two-phase commit with a compensating
action: the filesystem move is the prepare step, the git add/commit/push is
the commit step, and failure in the second phase triggers an explicit
transition back toward the starting state. Recovery failure degrades to a
logged warning; the batch loop must never crash on its last line of defense.

⚡ Constraints:
- Strictly sequential: one file, one git invocation at a time
- No timeouts on git; a hang is visible to the supervising operator
- Exclusive ownership of the working copy for the lifetime of a run
*/
package pipeline
