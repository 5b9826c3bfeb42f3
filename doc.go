/*
linepipe runs a linear chain of text stages, each one on its own goroutine with its own bounded queue.

Lines are fed into the first stage, transformed, and handed to the next stage until the end token (Sentinel) is seen.
The end token is never transformed: every stage forwards it verbatim and then stops, so it drains the whole chain in order.

The chain looks like this:

- A feeder reads lines from an io.Reader and places them into Stage 0
- Stage i takes a line from its Queue, applies its Transform, and places the result into Stage i+1
- Stage N-1 transforms and discards
- When the Sentinel reaches a stage, the stage forwards it, announces it has finished, and its worker exits

Each Queue is bounded. A stage whose downstream neighbour is slow blocks in PlaceWork until room is available, so the
memory held by the pipeline never exceeds the sum of queue capacities plus one in-flight line per stage.

Workers run on a Workers pool sized to the number of stages plus the feeder. A pool too small to host every worker
surfaces as an Init error, and the Pipeline rolls back every stage it already started.

Stages are produced by a Loader. Each Load returns an independent instance, so the same transform can appear several
times in one chain.
*/

package linepipe
